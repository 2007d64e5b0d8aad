package cachekey

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/location"
)

const extMarker = "~"

// ErrSelfCache reports a source that lives inside the cache itself.
var ErrSelfCache = errors.New("source is on the cache")

// ParseRoot turns a CACHE_BUCKET style value into the cache root. A bare
// "bucket" or "bucket/sub/dir" names an S3 location; anything containing a
// scheme is parsed as a URI.
func ParseRoot(container string) (location.Location, error) {
	if strings.Contains(container, "://") {
		return location.Parse(container)
	}
	bucket, sub, _ := strings.Cut(container, "/")
	return location.Object(bucket, sub)
}

// Scheme maps (source, params) pairs to cache locations under a root.
type Scheme struct {
	root     location.Location
	newToken func() string
}

// New creates a Scheme rooted at root.
func New(root location.Location) *Scheme {
	return &Scheme{root: root, newToken: uuid.NewString}
}

// Root returns the cache root.
func (s *Scheme) Root() location.Location {
	return s.root
}

// LookupPrefix returns the location every cached variant of (src, p) is
// stored under. Equal inputs always give equal prefixes; distinct inputs
// never do.
func (s *Scheme) LookupPrefix(src location.Location, p imaging.Params) (location.Location, error) {
	key, _, err := s.relativeKey(src, p)
	if err != nil {
		return location.Location{}, err
	}
	return s.root.Join(key), nil
}

// UniqueWriteTarget returns a fresh location under LookupPrefix(src, p).
func (s *Scheme) UniqueWriteTarget(src location.Location, p imaging.Params) (location.Location, error) {
	key, ext, err := s.relativeKey(src, p)
	if err != nil {
		return location.Location{}, err
	}
	return s.root.Join(key + s.newToken() + ext), nil
}

// ValidateNotCacheItself returns ErrSelfCache when src is stored in the cache:
// the same bucket for S3 roots, or a path below the root for local ones.
func (s *Scheme) ValidateNotCacheItself(src location.Location) error {
	if src.Kind() != s.root.Kind() {
		return nil
	}

	var inside bool
	switch src.Kind() {
	case location.KindObject:
		inside = src.Bucket() == s.root.Bucket()
	case location.KindLocal:
		inside = isUnder(src.Path(), s.root.Path())
	}
	if inside {
		return fmt.Errorf("%w: %s on %s", ErrSelfCache, src, s.root)
	}
	return nil
}

// relativeKey builds the lookup prefix relative to the root and returns the
// source extension alongside it.
func (s *Scheme) relativeKey(src location.Location, p imaging.Params) (string, string, error) {
	if src.IsZero() {
		return "", "", fmt.Errorf("%w: empty source", location.ErrInvalidURI)
	}
	if p.Kind != imaging.KindLongEdge && p.Kind != imaging.KindFit {
		return "", "", fmt.Errorf("unknown transform kind %d", p.Kind)
	}
	if err := s.ValidateNotCacheItself(src); err != nil {
		return "", "", err
	}

	parts := strings.Split(src.Key(), "/")
	dirs, name := parts[:len(parts)-1], parts[len(parts)-1]
	ext := extension(name)
	stem := strings.TrimSuffix(name, ext)

	segs := make([]string, 0, len(dirs)+5)
	segs = append(segs, string(src.Kind())+"_"+src.Bucket(), p.Segment())
	for _, d := range dirs {
		segs = append(segs, escapeSegment(d))
	}
	segs = append(segs, escapeSegment(stem), extMarker+escapeChars(ext), "")

	return strings.Join(segs, "/"), ext, nil
}

// extension returns the final ".suffix" of name. Leading dots belong to the
// name, so ".profile" and "..x" have none.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return ""
	}
	return name[i:]
}

func escapeChars(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	return strings.ReplaceAll(s, extMarker, "%7E")
}

// escapeSegment makes s a non-empty file name that is not "." or ".." and does
// not start with the extension marker.
func escapeSegment(s string) string {
	switch s {
	case "":
		return "%"
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return escapeChars(s)
}

func isUnder(p, root string) bool {
	absP, err1 := filepath.Abs(p)
	absRoot, err2 := filepath.Abs(root)
	if err1 != nil || err2 != nil {
		absP, absRoot = filepath.Clean(p), filepath.Clean(root)
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
