package imaging

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("dimension out of range")

	// ErrInvalidDimension reports a dimension that is not an integer.
	ErrInvalidDimension = errors.New("dimension must be an integer")

	// ErrDecode reports data that is not a decodable raster image.
	ErrDecode = errors.New("cannot decode image")
)

// Default pixel bounds, inclusive on both ends.
const (
	DefaultMinEdge = 100
	DefaultMaxEdge = 2000
)

// RangeError reports a pixel dimension outside the configured bounds.
type RangeError struct {
	Name     string
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be >= %d and <= %d, got %d", e.Name, e.Min, e.Max, e.Value)
}

// Is makes errors.Is(err, ErrOutOfRange) true for any *RangeError.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Bounds holds the inclusive range every requested dimension must fall in.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns 100..2000.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinEdge, Max: DefaultMaxEdge}
}

// Check returns a *RangeError unless b.Min <= value <= b.Max.
func (b Bounds) Check(name string, value int) error {
	if value < b.Min || value > b.Max {
		return &RangeError{Name: name, Value: value, Min: b.Min, Max: b.Max}
	}
	return nil
}

// Validate checks every dimension of p.
func (b Bounds) Validate(p Params) error {
	switch p.Kind {
	case KindLongEdge:
		return b.Check("long-edge", p.LongEdge)
	case KindFit:
		if err := b.Check("width", p.Width); err != nil {
			return err
		}
		return b.Check("height", p.Height)
	default:
		return fmt.Errorf("unknown transform kind %d", p.Kind)
	}
}

// ParseDimension converts a path or flag value to a pixel count. Anything
// but a base-10 integer ("400.5", "big", "") fails with ErrInvalidDimension.
func ParseDimension(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, ErrInvalidDimension)
	}
	return v, nil
}

// Kind selects the transform.
type Kind int

const (
	KindLongEdge Kind = iota + 1
	KindFit
)

// Params describes one transform request. Build values with LongEdge or
// FitBox.
type Params struct {
	Kind     Kind
	LongEdge int
	Width    int
	Height   int
}

// LongEdge requests a proportional resize so the longer side is pixels long.
func LongEdge(pixels int) Params {
	return Params{Kind: KindLongEdge, LongEdge: pixels}
}

// FitBox requests a cover-crop to exactly width x height.
func FitBox(width, height int) Params {
	return Params{Kind: KindFit, Width: width, Height: height}
}

// Segment renders p as a path segment: "long800px" or "fit300x150".
func (p Params) Segment() string {
	switch p.Kind {
	case KindLongEdge:
		return fmt.Sprintf("long%dpx", p.LongEdge)
	case KindFit:
		return fmt.Sprintf("fit%dx%d", p.Width, p.Height)
	default:
		return fmt.Sprintf("kind%d", p.Kind)
	}
}

func (p Params) String() string {
	return p.Segment()
}
