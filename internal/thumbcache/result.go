package thumbcache

import (
	"errors"

	"github.com/ironsheep/thumbnailer/internal/location"
)

// Status tells whether a result came from the cache.
type Status string

const (
	StatusHit    Status = "Hit"
	StatusMissed Status = "Missed"
)

var (
	// ErrWriteFailed wraps every non-fatal cache write failure in
	// Result.CacheErr.
	ErrWriteFailed = errors.New("cache write failed")

	// ErrLocalSourceDisabled rejects local-path sources when they are not
	// allowed.
	ErrLocalSourceDisabled = errors.New("local sources are disabled")
)

// Result is the outcome of one Thumbnail call.
type Result struct {
	Data   []byte
	Status Status

	// Entry is the cache entry that was read (Hit) or written (Missed). It is
	// zero when caching is disabled or the write failed.
	Entry location.Location

	// CacheErr is non-nil when the transformed bytes could not be stored.
	CacheErr error
}

// CacheWriteFailed reports whether storing a freshly transformed image failed.
func (r Result) CacheWriteFailed() bool {
	return r.CacheErr != nil
}
