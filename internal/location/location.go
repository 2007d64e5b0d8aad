package location

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the backend a Location addresses.
type Kind string

const (
	KindLocal  Kind = "file"
	KindObject Kind = "s3"
)

const (
	fileScheme = "file://"
	s3Scheme   = "s3://"
	schemeSep  = "://"

	// "scheme://" contributes two separators; one more is required
	// between the container (or path root) and the rest.
	minSeparators = 3
)

const (
	exampleObject = "s3://bucket/key"
	exampleLocal  = "file://path or just path"
	exampleAny    = "s3://bucket/key, file://path or just path"
)

// ErrInvalidURI is matched by every parse failure.
var ErrInvalidURI = errors.New("invalid path or URI")

// InvalidURIError reports a string that matches no recognised form.
type InvalidURIError struct {
	URI     string
	Example string
}

func (e *InvalidURIError) Error() string {
	msg := fmt.Sprintf("invalid path or URI: %q", e.URI)
	if e.Example != "" {
		msg += ", example: " + e.Example
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidURI) true for any *InvalidURIError.
func (e *InvalidURIError) Is(target error) bool {
	return target == ErrInvalidURI
}

func invalid(uri, example string) (Location, error) {
	return Location{}, &InvalidURIError{URI: uri, Example: example}
}

// Location is a parsed, backend-typed reference to a blob.
//
// The zero value is not a valid location; obtain one from Parse, Object or
// Local.
type Location struct {
	kind   Kind
	bucket string
	// key holds the object key for KindObject and the filesystem path for
	// KindLocal.
	key string
}

// Parse recognises the object-store and local forms described in the package
// documentation.
func Parse(uri string) (Location, error) {
	switch {
	case strings.HasPrefix(uri, s3Scheme):
		if strings.Count(uri, "/") < minSeparators {
			return invalid(uri, exampleObject)
		}
		rest := uri[len(s3Scheme):]
		i := strings.IndexByte(rest, '/')
		if i <= 0 {
			return invalid(uri, exampleObject)
		}
		return Location{kind: KindObject, bucket: rest[:i], key: rest[i+1:]}, nil

	case strings.HasPrefix(uri, fileScheme):
		if strings.Count(uri, "/") < minSeparators {
			return invalid(uri, exampleLocal)
		}
		return Location{kind: KindLocal, key: uri[len(fileScheme):]}, nil

	case uri != "" && !strings.Contains(uri, schemeSep):
		return Location{kind: KindLocal, key: uri}, nil
	}

	return invalid(uri, exampleAny)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(uri string) Location {
	loc, err := Parse(uri)
	if err != nil {
		panic(err)
	}
	return loc
}

// Object builds an object-store location.
func Object(bucket, key string) (Location, error) {
	if bucket == "" || strings.Contains(bucket, "/") {
		return invalid(s3Scheme+bucket+"/"+key, exampleObject)
	}
	return Location{kind: KindObject, bucket: bucket, key: key}, nil
}

// Local builds a local-path location.
func Local(path string) (Location, error) {
	if path == "" {
		return invalid(path, exampleLocal)
	}
	return Location{kind: KindLocal, key: path}, nil
}

// Kind returns the backend variant.
func (l Location) Kind() Kind { return l.kind }

// Bucket returns the object-store container, or "" for local paths.
func (l Location) Bucket() string { return l.bucket }

// Key returns the object key, or the filesystem path for local locations.
func (l Location) Key() string { return l.key }

// Path returns the filesystem path of a local location, or "" otherwise.
func (l Location) Path() string {
	if l.kind != KindLocal {
		return ""
	}
	return l.key
}

// IsZero reports whether l was never assigned a parsed value.
func (l Location) IsZero() bool { return l.kind == "" }

// Join appends elem to the key, inserting a "/" unless the key is empty or
// already ends with one. Trailing separators in elem are preserved so that
// directory-style prefixes survive.
func (l Location) Join(elem string) Location {
	out := l
	switch {
	case l.key == "", strings.HasSuffix(l.key, "/"):
		out.key = l.key + elem
	default:
		out.key = l.key + "/" + elem
	}
	return out
}

// String returns the URI form. Parse(l.String()) yields l again.
func (l Location) String() string {
	switch l.kind {
	case KindObject:
		return s3Scheme + l.bucket + "/" + l.key
	case KindLocal:
		// "file://name" has too few separators to parse back, so paths
		// without any "/" keep their bare form.
		if !strings.Contains(l.key, "/") {
			return l.key
		}
		return fileScheme + l.key
	default:
		return ""
	}
}
