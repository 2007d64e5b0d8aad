package storage

import (
	"context"

	"github.com/ironsheep/thumbnailer/internal/location"
)

// Backend is the set of operations every location kind supports.
type Backend interface {
	// Exists reports whether loc names an existing blob. A missing blob is
	// (false, nil).
	Exists(ctx context.Context, loc location.Location) (bool, error)

	// Read returns the blob content. limit > 0 caps the number of bytes
	// read; limit <= 0 reads to the end.
	Read(ctx context.Context, loc location.Location, limit int64) ([]byte, error)

	// Write stores data at loc, replacing any previous content.
	Write(ctx context.Context, loc location.Location, data []byte) (bool, error)

	// Remove deletes the blob at loc.
	Remove(ctx context.Context, loc location.Location) (bool, error)

	// List returns up to limit blobs whose key starts with prefix's key, in
	// the backend's native order. limit <= 0 means no limit.
	List(ctx context.Context, prefix location.Location, limit int) ([]location.Location, error)
}

// Storage routes calls to the backend for each location kind.
type Storage struct {
	local  Backend
	object Backend
}

// New creates a Storage. Either backend may be nil, in which case locations
// of that kind fail with ErrUnsupported.
func New(local, object Backend) *Storage {
	return &Storage{local: local, object: object}
}

func (s *Storage) backend(op string, loc location.Location) (Backend, error) {
	var b Backend
	switch loc.Kind() {
	case location.KindLocal:
		b = s.local
	case location.KindObject:
		b = s.object
	}
	if b == nil {
		return nil, newError(op, loc.String(), ErrUnsupported)
	}
	return b, nil
}

func (s *Storage) Exists(ctx context.Context, loc location.Location) (bool, error) {
	b, err := s.backend("exists", loc)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, loc)
}

func (s *Storage) Read(ctx context.Context, loc location.Location, limit int64) ([]byte, error) {
	b, err := s.backend("read", loc)
	if err != nil {
		return nil, err
	}
	return b.Read(ctx, loc, limit)
}

func (s *Storage) Write(ctx context.Context, loc location.Location, data []byte) (bool, error) {
	b, err := s.backend("write", loc)
	if err != nil {
		return false, err
	}
	return b.Write(ctx, loc, data)
}

func (s *Storage) Remove(ctx context.Context, loc location.Location) (bool, error) {
	b, err := s.backend("remove", loc)
	if err != nil {
		return false, err
	}
	return b.Remove(ctx, loc)
}

func (s *Storage) List(ctx context.Context, prefix location.Location, limit int) ([]location.Location, error) {
	b, err := s.backend("list", prefix)
	if err != nil {
		return nil, err
	}
	return b.List(ctx, prefix, limit)
}
