package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/assets"
	"github.com/Faultbox/isomap/internal/config"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/game/entity"
)

// demoSize is the side of the map used when none is configured.
const demoSize = 24

// Scene is a loaded map with the entities its objects produced.
type Scene struct {
	Map      *tilemap.Map
	Entities *entity.Manager

	// Start is the tile named by the map's start object, or (-1, -1).
	Start tilemap.Point
}

// LoadScene opens the configured map, or the demo map when no path is set.
// A map path naming a file on disk is read from its own directory, which
// takes priority over the configured asset directories; any other path is
// resolved through the asset directories alone.
func LoadScene(ctx context.Context, cfg config.MapConfig, f *entity.Factory, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if f == nil {
		f = entity.NewFactory(entity.NewManager(), nil)
	}

	if cfg.Path == "" {
		log.Info("no map configured, using demo map")
		return &Scene{Map: DemoMap(demoSize, demoSize), Entities: f.Entities, Start: f.Start}, nil
	}

	am := assets.NewManager(log)
	defer am.Close()

	for _, dir := range cfg.AssetDirs {
		if err := am.AddDir(dir); err != nil {
			log.Warn("skipping asset dir", zap.String("dir", dir), zap.Error(err))
		}
	}

	name := filepath.ToSlash(cfg.Path)
	if info, err := os.Stat(cfg.Path); err == nil && !info.IsDir() {
		if err := am.AddDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
		name = filepath.Base(cfg.Path)
	}

	m, err := am.LoadMap(ctx, name, assets.MapOptions{Objects: f.Object})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
	}
	return &Scene{Map: m, Entities: f.Entities, Start: f.Start}, nil
}
