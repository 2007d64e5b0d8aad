package thumbcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/thumbnailer/internal/cachekey"
	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/location"
	"github.com/ironsheep/thumbnailer/internal/logging"
	"github.com/ironsheep/thumbnailer/internal/storage"
)

// Store is the part of *storage.Storage the service uses.
type Store interface {
	Read(ctx context.Context, loc location.Location, limit int64) ([]byte, error)
	Write(ctx context.Context, loc location.Location, data []byte) (bool, error)
	List(ctx context.Context, prefix location.Location, limit int) ([]location.Location, error)
}

// Options configures a Service.
type Options struct {
	Store       Store
	Transformer *imaging.Transformer

	// Scheme places cache entries. Nil disables caching.
	Scheme *cachekey.Scheme

	// AllowLocalSources permits local-path source locations.
	AllowLocalSources bool

	// MemoSize bounds the lookup memo. Zero disables it.
	MemoSize int

	Observer Observer
	Logger   logging.Interface
}

// Service runs thumbnail requests through the cache.
type Service struct {
	store       Store
	transformer *imaging.Transformer
	scheme      *cachekey.Scheme
	allowLocal  bool
	memo        *memo
	observer    Observer
	logger      logging.Interface
}

// New validates opts and builds a Service.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("thumbcache: store is required")
	}
	if opts.Transformer == nil {
		opts.Transformer = imaging.New()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	m, err := newMemo(opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup memo: %w", err)
	}
	return &Service{
		store:       opts.Store,
		transformer: opts.Transformer,
		scheme:      opts.Scheme,
		allowLocal:  opts.AllowLocalSources,
		memo:        m,
		observer:    opts.Observer,
		logger:      opts.Logger,
	}, nil
}

// CachingEnabled reports whether a cache root is configured.
func (s *Service) CachingEnabled() bool {
	return s.scheme != nil
}

// Bounds returns the dimension range requests are checked against.
func (s *Service) Bounds() imaging.Bounds {
	return s.transformer.Bounds()
}

func (s *Service) checkSource(src location.Location) error {
	if src.Kind() == location.KindLocal && !s.allowLocal {
		return fmt.Errorf("%w: %s", ErrLocalSourceDisabled, src)
	}
	return nil
}

// Thumbnail returns src transformed by p, from the cache when possible.
//
// The returned error is fatal to the request. Cache write failures are not;
// they are reported in Result.CacheErr next to valid Data.
func (s *Service) Thumbnail(ctx context.Context, src location.Location, p imaging.Params) (res Result, err error) {
	defer func() { s.observer.RecordRequest(p.Kind, res.Status, err) }()

	if err := s.checkSource(src); err != nil {
		return Result{}, err
	}
	if err := s.transformer.Bounds().Validate(p); err != nil {
		return Result{}, err
	}

	log := s.logger.WithField("uri", src.String()).WithField("params", p.String())

	if s.scheme != nil {
		if err := s.scheme.ValidateNotCacheItself(src); err != nil {
			return Result{}, err
		}
		hit, ok, err := s.lookup(ctx, src, p)
		if err != nil {
			return Result{}, err
		}
		if ok {
			log.WithField("entry", hit.Entry.String()).Info("Cache hit")
			return hit, nil
		}
	}

	data, err := s.store.Read(ctx, src, 0)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read source: %w", err)
	}

	start := time.Now()
	out, err := s.transformer.Apply(data, p)
	s.observer.RecordTransform(p.Kind, time.Since(start), err)
	if err != nil {
		return Result{}, fmt.Errorf("failed to transform %s: %w", src, err)
	}

	res = Result{Data: out, Status: StatusMissed}
	if s.scheme != nil {
		res.Entry, res.CacheErr = s.save(ctx, src, p, out)
		if res.CacheErr != nil {
			log.WithError(res.CacheErr).Warn("Serving uncached thumbnail")
		} else {
			log.WithField("entry", res.Entry.String()).Info("Wrote thumbnail to cache")
		}
	}
	return res, nil
}

// lookup returns the first cached entry for (src, p), if any.
func (s *Service) lookup(ctx context.Context, src location.Location, p imaging.Params) (Result, bool, error) {
	start := time.Now()
	res, ok, err := s.find(ctx, src, p)
	s.observer.RecordLookup(time.Since(start), err)
	return res, ok, err
}

func (s *Service) find(ctx context.Context, src location.Location, p imaging.Params) (Result, bool, error) {
	prefix, err := s.scheme.LookupPrefix(src, p)
	if err != nil {
		return Result{}, false, err
	}

	if entry, ok := s.memo.get(prefix); ok {
		data, err := s.store.Read(ctx, entry, 0)
		switch {
		case err == nil:
			return Result{Data: data, Status: StatusHit, Entry: entry}, true, nil
		case storage.IsNotFound(err):
			// Removed behind our back; fall through to a fresh listing.
			s.memo.forget(prefix)
		default:
			return Result{}, false, fmt.Errorf("failed to read cache entry: %w", err)
		}
	}

	entries, err := s.store.List(ctx, prefix, 1)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to list cache: %w", err)
	}
	if len(entries) == 0 {
		return Result{}, false, nil
	}

	entry := entries[0]
	data, err := s.store.Read(ctx, entry, 0)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	s.memo.put(prefix, entry)
	return Result{Data: data, Status: StatusHit, Entry: entry}, true, nil
}

// save writes data to a fresh cache entry. Failures are returned wrapped in
// ErrWriteFailed and never abort the request.
func (s *Service) save(ctx context.Context, src location.Location, p imaging.Params, data []byte) (location.Location, error) {
	start := time.Now()
	entry, err := s.write(ctx, src, p, data)
	s.observer.RecordCacheWrite(time.Since(start), len(data), err)
	return entry, err
}

func (s *Service) write(ctx context.Context, src location.Location, p imaging.Params, data []byte) (location.Location, error) {
	target, err := s.scheme.UniqueWriteTarget(src, p)
	if err != nil {
		return location.Location{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	ok, err := s.store.Write(ctx, target, data)
	if err != nil {
		return location.Location{}, fmt.Errorf("%w: %s: %w", ErrWriteFailed, target, err)
	}
	if !ok {
		return location.Location{}, fmt.Errorf("%w: %s", ErrWriteFailed, target)
	}
	return target, nil
}

// Info describes src: its stored size, format and dominant colors.
func (s *Service) Info(ctx context.Context, src location.Location) (imaging.Info, error) {
	if err := s.checkSource(src); err != nil {
		return imaging.Info{}, err
	}
	data, err := s.store.Read(ctx, src, 0)
	if err != nil {
		return imaging.Info{}, fmt.Errorf("failed to read source: %w", err)
	}
	info, err := imaging.Describe(data)
	if err != nil {
		return imaging.Info{}, fmt.Errorf("failed to describe %s: %w", src, err)
	}
	return info, nil
}
