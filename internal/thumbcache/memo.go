package thumbcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ironsheep/thumbnailer/internal/location"
)

// memo remembers which cache entry answered a lookup prefix so repeat hits
// skip the listing call. A nil *memo is valid and remembers nothing.
type memo struct {
	cache *lru.Cache[string, location.Location]
}

func newMemo(size int) (*memo, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New[string, location.Location](size)
	if err != nil {
		return nil, err
	}
	return &memo{cache: cache}, nil
}

func (m *memo) get(prefix location.Location) (location.Location, bool) {
	if m == nil {
		return location.Location{}, false
	}
	return m.cache.Get(prefix.String())
}

func (m *memo) put(prefix, entry location.Location) {
	if m == nil {
		return
	}
	m.cache.Add(prefix.String(), entry)
}

func (m *memo) forget(prefix location.Location) {
	if m == nil {
		return
	}
	m.cache.Remove(prefix.String())
}

func (m *memo) len() int {
	if m == nil {
		return 0
	}
	return m.cache.Len()
}
