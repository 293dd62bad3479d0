package sprite

import (
	"image"
	"image/color"
)

// Diamond draws an isometric diamond outline of the given size, used for tile
// highlights and cursors when no artwork is configured.
func Diamond(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	hw, hh := float64(width)/2, float64(height)/2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// distance from centre in diamond metric
			dx := (float64(x) + 0.5 - hw) / hw
			dy := (float64(y) + 0.5 - hh) / hh
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			d := dx + dy
			switch {
			case d > 1:
			case d > 0.85:
				img.SetNRGBA(x, y, c)
			default:
				fill := c
				fill.A = c.A / 4
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img
}

// Marker creates a simple humanoid figure, the stand-in for entities
// without artwork.
func Marker(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	centerX := width / 2

	body := shade(c, 0.8)
	legs := shade(c, 0.6)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dist := x - centerX
			if dist < 0 {
				dist = -dist
			}

			switch {
			case y < height/4 && dist < width/4:
				img.SetNRGBA(x, y, c)
			case y >= height/4 && y < height*3/4 && dist < width/3:
				img.SetNRGBA(x, y, body)
			case y >= height*3/4 && dist < width/4:
				img.SetNRGBA(x, y, legs)
			}
		}
	}
	return img
}

// Block creates a flat-topped isometric block tile: a diamond top face over
// two darker side faces. depth is the height of the sides in pixels.
func Block(width, height, depth int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height+depth))
	hw, hh := float64(width)/2, float64(height)/2
	left, right := shade(c, 0.7), shade(c, 0.5)

	for y := 0; y < height+depth; y++ {
		for x := 0; x < width; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			dx := (px - hw) / hw
			if dx < 0 {
				dx = -dx
			}

			// top face
			dy := (py - hh) / hh
			if dy < 0 {
				dy = -dy
			}
			if dx+dy <= 1 {
				img.SetNRGBA(x, y, c)
				continue
			}

			// sides: the top diamond swept down by depth
			if py > hh && py-float64(depth) <= hh+hh*(1-dx) {
				if px < hw {
					img.SetNRGBA(x, y, left)
				} else {
					img.SetNRGBA(x, y, right)
				}
			}
		}
	}
	return img
}

func shade(c color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
