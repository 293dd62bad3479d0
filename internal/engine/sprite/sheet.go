// Package sprite provides sprite sheets, procedural placeholder art and the
// per-entity sprite arena.
package sprite

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// Sheet is an ordered set of equally sized frames cut from one image.
type Sheet struct {
	frames        []*image.NRGBA
	width, height int
}

// NewSheet slices img into frames of frameW x frameH, left to right then top
// to bottom. A zero frame size uses the whole image as a single frame.
func NewSheet(img image.Image, frameW, frameH int) (*Sheet, error) {
	frames, err := Slice(img, frameW, frameH, 0)
	if err != nil {
		return nil, err
	}
	b := frames[0].Bounds()
	return &Sheet{frames: frames, width: b.Dx(), height: b.Dy()}, nil
}

// FromFrames wraps already cut frames. All frames should share one size.
func FromFrames(frames ...*image.NRGBA) *Sheet {
	s := &Sheet{frames: frames}
	if len(frames) > 0 {
		s.width, s.height = frames[0].Bounds().Dx(), frames[0].Bounds().Dy()
	}
	return s
}

// Slice cuts img into frames. When count is positive, at most count frames are
// returned and it is an error for the image to hold fewer.
func Slice(img image.Image, frameW, frameH, count int) ([]*image.NRGBA, error) {
	b := img.Bounds()
	if frameW <= 0 || frameH <= 0 {
		frameW, frameH = b.Dx(), b.Dy()
	}
	cols, rows := b.Dx()/frameW, b.Dy()/frameH
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("image %dx%d smaller than frame %dx%d", b.Dx(), b.Dy(), frameW, frameH)
	}
	total := cols * rows
	if count > 0 {
		if count > total {
			return nil, fmt.Errorf("image holds %d frames of %dx%d, need %d", total, frameW, frameH, count)
		}
		total = count
	}

	frames := make([]*image.NRGBA, 0, total)
	for i := 0; i < total; i++ {
		x := b.Min.X + (i%cols)*frameW
		y := b.Min.Y + (i/cols)*frameH
		frames = append(frames, imaging.Crop(img, image.Rect(x, y, x+frameW, y+frameH)))
	}
	return frames, nil
}

// Len returns the number of frames.
func (s *Sheet) Len() int {
	return len(s.frames)
}

// Size returns the frame size.
func (s *Sheet) Size() (int, int) {
	return s.width, s.height
}

// Frame returns frame i, wrapping around the sheet.
func (s *Sheet) Frame(i int) *image.NRGBA {
	if len(s.frames) == 0 {
		return nil
	}
	i %= len(s.frames)
	if i < 0 {
		i += len(s.frames)
	}
	return s.frames[i]
}

// Frames returns all frames.
func (s *Sheet) Frames() []*image.NRGBA {
	return s.frames
}

// Mirror returns a copy of the sheet flipped left to right.
func (s *Sheet) Mirror() *Sheet {
	out := make([]*image.NRGBA, len(s.frames))
	for i, f := range s.frames {
		out[i] = imaging.FlipH(f)
	}
	return &Sheet{frames: out, width: s.width, height: s.height}
}

// Draw blits a frame with its bottom-centre at (x, y).
func (s *Sheet) Draw(dst surface.Surface, x, y float64, frame int) {
	surface.DrawMidBottom(dst, s.Frame(frame), x, y)
}
