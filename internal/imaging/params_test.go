package imaging

import (
	"errors"
	"testing"
)

func TestBounds_Check(t *testing.T) {
	b := DefaultBounds()

	tests := []struct {
		value   int
		wantErr bool
	}{
		{DefaultMinEdge - 1, true},
		{DefaultMinEdge, false},
		{800, false},
		{DefaultMaxEdge, false},
		{DefaultMaxEdge + 1, true},
		{0, true},
		{-5, true},
	}

	for _, tt := range tests {
		err := b.Check("long-edge", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Check(%d): err = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Check(%d): error %v does not match ErrOutOfRange", tt.value, err)
		}
	}
}

func TestRangeError_Message(t *testing.T) {
	err := Bounds{Min: 100, Max: 2000}.Check("width", 99)

	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *RangeError, got %T", err)
	}
	if rangeErr.Name != "width" || rangeErr.Value != 99 {
		t.Errorf("unexpected fields: %+v", rangeErr)
	}
	want := "width must be >= 100 and <= 2000, got 99"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBounds_Validate(t *testing.T) {
	b := DefaultBounds()

	if err := b.Validate(LongEdge(400)); err != nil {
		t.Errorf("LongEdge(400): %v", err)
	}
	if err := b.Validate(FitBox(300, 150)); err != nil {
		t.Errorf("FitBox(300, 150): %v", err)
	}
	if err := b.Validate(FitBox(300, 50)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("FitBox(300, 50): expected ErrOutOfRange, got %v", err)
	}
	if err := b.Validate(Params{}); err == nil {
		t.Error("zero Params should fail validation")
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"400", 400, false},
		{"0", 0, false},
		{"400.5", 0, true},
		{"big", 0, true},
		{"", 0, true},
		{"4e2", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDimension("long-edge", tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDimension) {
				t.Errorf("ParseDimension(%q): expected ErrInvalidDimension, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDimension(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestParams_Segment(t *testing.T) {
	if got := LongEdge(800).Segment(); got != "long800px" {
		t.Errorf("LongEdge segment = %q", got)
	}
	if got := FitBox(300, 150).Segment(); got != "fit300x150" {
		t.Errorf("FitBox segment = %q", got)
	}
	if LongEdge(300).Segment() == FitBox(300, 300).Segment() {
		t.Error("segments for different kinds must differ")
	}
}
