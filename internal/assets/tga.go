package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// TGA image types.
const (
	tgaUncompressed = 2
	tgaRLE          = 10
)

// ErrTGA is wrapped by every TGA decoding failure.
var ErrTGA = errors.New("invalid TGA image")

// DecodeTGA decodes an uncompressed or RLE true-colour TGA file. TGA has no
// magic number, so it is picked by file extension rather than registered
// with the image package.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("%w: header truncated", ErrTGA)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: colour-mapped images not supported", ErrTGA)
	}
	if imageType != tgaUncompressed && imageType != tgaRLE {
		return nil, fmt.Errorf("%w: unsupported type %d", ErrTGA, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: unsupported depth %d", ErrTGA, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: data truncated", ErrTGA)
	}

	d := &tgaDecoder{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		data:        data[offset:],
		bpp:         bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}
	var err error
	if imageType == tgaUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.NRGBA
	data        []byte
	pos         int
	bpp         int
	topToBottom bool
	pixel       int
}

// read returns the next BGR(A) pixel.
func (d *tgaDecoder) read() (color.NRGBA, bool) {
	if d.pos+d.bpp > len(d.data) {
		return color.NRGBA{}, false
	}
	p := d.data[d.pos:]
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c, true
}

// put stores the next pixel in file order. Rows run bottom to top unless
// the descriptor says otherwise.
func (d *tgaDecoder) put(c color.NRGBA) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := d.pixel%w, d.pixel/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) total() int {
	return d.img.Rect.Dx() * d.img.Rect.Dy()
}

func (d *tgaDecoder) raw() error {
	if len(d.data) < d.total()*d.bpp {
		return fmt.Errorf("%w: pixel data truncated", ErrTGA)
	}
	for d.pixel < d.total() {
		c, _ := d.read()
		d.put(c)
	}
	return nil
}

// rle decodes run-length packets. A short stream leaves the remaining
// pixels transparent.
func (d *tgaDecoder) rle() error {
	for d.pixel < d.total() && d.pos < len(d.data) {
		packet := d.data[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := d.read()
			if !ok {
				break
			}
			for i := 0; i < count && d.pixel < d.total(); i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count && d.pixel < d.total(); i++ {
			c, ok := d.read()
			if !ok {
				break
			}
			d.put(c)
		}
	}
	return nil
}

// ApplyColorKey returns a copy of img with every pixel matching key's RGB
// made transparent black, so filtering does not bleed the key colour.
func ApplyColorKey(img *image.NRGBA, key color.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i] == key.R && out.Pix[i+1] == key.G && out.Pix[i+2] == key.B {
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
		}
	}
	return out
}
