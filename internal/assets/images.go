package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	pathpkg "path"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type imageCache struct {
	mu     sync.Mutex
	images map[string]*image.NRGBA
}

func newImageCache() *imageCache {
	return &imageCache{images: make(map[string]*image.NRGBA)}
}

func (c *imageCache) get(path string) (*image.NRGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[path]
	return img, ok
}

func (c *imageCache) put(path string, img *image.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[path] = img
}

func (c *imageCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.images)
}

// LoadImage decodes an image file (PNG, JPEG, GIF, BMP, WebP or TGA) as NRGBA.
// Decoded images are cached by path and shared between callers.
func (m *Manager) LoadImage(path string) (*image.NRGBA, error) {
	if img, ok := m.images.get(path); ok {
		return img, nil
	}

	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}

	src, format, err := decodeImage(path, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	img, ok := src.(*image.NRGBA)
	if !ok || img.Rect.Min != (image.Point{}) {
		img = imaging.Clone(src)
	}

	m.images.put(path, img)
	m.log.Sugar().Debugf("decoded %s image %s (%dx%d)", format, path, img.Rect.Dx(), img.Rect.Dy())
	return img, nil
}

func decodeImage(name string, data []byte) (image.Image, string, error) {
	if strings.EqualFold(pathpkg.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		return img, "tga", err
	}
	return image.Decode(bytes.NewReader(data))
}
