package sprite

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// BuildFunc produces the sprite for one entity.
type BuildFunc func() (*Sheet, error)

// Arena holds derived sprites keyed by a stable entity id. Entries live until
// Evict is called, normally when the entity leaves its object group.
type Arena struct {
	mu      sync.Mutex
	sheets  map[uint64]*Sheet
	release surface.Releaser
	log     *zap.Logger

	builds    int
	evictions int
}

// NewArena creates an empty arena. release may be nil; when set, evicted frames
// are handed to it so GPU textures can be freed.
func NewArena(release surface.Releaser, log *zap.Logger) *Arena {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{
		sheets:  make(map[uint64]*Sheet),
		release: release,
		log:     log,
	}
}

// SetReleaser sets where evicted frames are released.
func (a *Arena) SetReleaser(r surface.Releaser) {
	a.mu.Lock()
	a.release = r
	a.mu.Unlock()
}

// Get returns the sprite for id, building it on first use.
func (a *Arena) Get(id uint64, build BuildFunc) (*Sheet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.sheets[id]; ok {
		return s, nil
	}
	s, err := build()
	if err != nil {
		return nil, fmt.Errorf("building sprite for entity %d: %w", id, err)
	}
	a.sheets[id] = s
	a.builds++
	return s, nil
}

// Lookup returns the cached sprite for id without building it.
func (a *Arena) Lookup(id uint64) (*Sheet, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sheets[id]
	return s, ok
}

// Evict drops the sprite for id and releases its frames.
func (a *Arena) Evict(id uint64) {
	a.mu.Lock()
	s, ok := a.sheets[id]
	if ok {
		delete(a.sheets, id)
		a.evictions++
	}
	release := a.release
	a.mu.Unlock()

	if !ok {
		return
	}
	if release != nil {
		for _, f := range s.Frames() {
			release.Release(f)
		}
	}
	a.log.Debug("sprite evicted", zap.Uint64("entity", id))
}

// Len returns the number of live sprites.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sheets)
}

// Stats returns build and eviction counters.
func (a *Arena) Stats() (builds, evictions int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.builds, a.evictions
}
