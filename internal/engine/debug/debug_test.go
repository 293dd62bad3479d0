package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/surface/surfacetest"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
)

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "isomap")
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 250e6, time.UTC) }

	want := filepath.Join("shots", "isomap_2024-03-01_12-30-05.250.png")
	if got := sc.GenerateFilename(); got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}

	sc.SetOutputDir("")
	if got := sc.GenerateFilename(); got != "isomap_2024-03-01_12-30-05.250.png" {
		t.Errorf("GenerateFilename() without dir = %q", got)
	}
}

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sc := NewScreenshotCapture(dir, "shot")

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 255, A: 255})

	path, err := sc.Capture(img)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("saved to %q, outside %q", path, dir)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening capture: %v", err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding capture: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("bounds %v, want %v", got.Bounds(), img.Bounds())
	}
	if r, _, _, _ := got.At(2, 1).RGBA(); r>>8 != 255 {
		t.Errorf("pixel (2,1) red = %d, want 255", r>>8)
	}
}

func TestSavePNGBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "x.png")
	if err := SavePNG(path, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func testMap() *tilemap.Map {
	m := tilemap.New(4, 4, 64, 32)
	ground := m.NewLayer("ground")
	ground.Fill(1)
	walls := m.NewLayer("walls")
	walls.Set(2, 1, 3|tilemap.FlipHorizontal)

	g := tilemap.NewObjectGroup("things", 0, 0)
	g.Add(&tilemap.TileObject{Name: "barrel", X: iso.TileCenter(2), Y: iso.TileCenter(1), GID: 4, Visible: true})
	g.Add(&tilemap.TileObject{X: iso.TileCenter(3), Y: iso.TileCenter(3), GID: 5, Visible: true})
	m.Attach(walls, g)
	return m
}

func TestGetTileInfo(t *testing.T) {
	m := testMap()

	tests := []struct {
		name string
		x, y int
		want TileInfo
	}{
		{
			name: "ground only",
			x:    0, y: 0,
			want: TileInfo{X: 0, Y: 0, OnMap: true, Visible: true, Cells: []LayerCell{{"ground", 1}}},
		},
		{
			name: "wall and object",
			x:    2, y: 1,
			want: TileInfo{
				X: 2, Y: 1, OnMap: true, Visible: true,
				Cells:   []LayerCell{{"ground", 1}, {"walls", 3 | tilemap.FlipHorizontal}},
				Objects: []string{"barrel"},
			},
		},
		{
			name: "unnamed object",
			x:    3, y: 3,
			want: TileInfo{
				X: 3, Y: 3, OnMap: true, Visible: true,
				Cells:   []LayerCell{{"ground", 1}},
				Objects: []string{"tile 5"},
			},
		},
		{
			name: "off map",
			x:    -1, y: 2,
			want: TileInfo{X: -1, Y: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetTileInfo(m, tt.x, tt.y)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetTileInfo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTileInfoString(t *testing.T) {
	m := testMap()
	m.EnableFog()

	tests := []struct {
		x, y int
		want string
	}{
		{2, 1, "(2,1) hidden ground=1 walls=3h objects=[barrel]"},
		{9, 9, "(9,9) off map"},
	}
	for _, tt := range tests {
		if got := GetTileInfo(m, tt.x, tt.y).String(); got != tt.want {
			t.Errorf("(%d,%d): got %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawPath(t *testing.T) {
	m := testMap()
	v := viewer.New(m, 320, 240, viewer.DefaultOptions())
	rec := surfacetest.New(320, 240)
	marker := image.NewNRGBA(image.Rect(0, 0, 8, 4))

	layer := m.Layer("walls")
	layer.OffsetY = -16
	path := []tilemap.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	DrawPath(rec, v, layer, marker, path)

	if len(rec.Draws) != len(path) {
		t.Fatalf("got %d draws, want %d", len(rec.Draws), len(path))
	}
	for i, p := range path {
		sx, sy := v.ScreenCoords(float64(p.X), float64(p.Y))
		want := surfacetest.Draw{Image: marker, X: sx - 4, Y: sy - 16 - 4}
		if diff := cmp.Diff(want, rec.Draws[i]); diff != "" {
			t.Errorf("draw %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
