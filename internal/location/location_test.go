package location

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Object(t *testing.T) {
	loc, err := Parse("s3://pokryfka-test/photoinfo/test1.jpg")
	require.NoError(t, err)

	assert.Equal(t, KindObject, loc.Kind())
	assert.Equal(t, "pokryfka-test", loc.Bucket())
	assert.Equal(t, "photoinfo/test1.jpg", loc.Key())
	assert.Equal(t, "", loc.Path())
	assert.Equal(t, "s3://pokryfka-test/photoinfo/test1.jpg", loc.String())
}

func TestParse_Local(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		path string
	}{
		{"bare relative", "photos/a.jpg", "photos/a.jpg"},
		{"bare absolute", "/srv/photos/a.jpg", "/srv/photos/a.jpg"},
		{"bare name", "a.jpg", "a.jpg"},
		{"file scheme absolute", "file:///srv/a.jpg", "/srv/a.jpg"},
		{"file scheme relative", "file://photos/a.jpg", "photos/a.jpg"},
		{"colon without scheme separator", "s3:invalid", "s3:invalid"},
		{"single slash scheme", "s3:/invalid", "s3:/invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Parse(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, KindLocal, loc.Kind())
			assert.Equal(t, tt.path, loc.Path())
			assert.Equal(t, "", loc.Bucket())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		example string
	}{
		{"empty", "", exampleAny},
		{"http reserved", "http://invalid", exampleAny},
		{"https reserved", "https://host/key", exampleAny},
		{"leading space", " s3://invalid", exampleAny},
		{"bucket without key separator", "s3://invalid", exampleObject},
		{"empty bucket", "s3:///key", exampleObject},
		{"file scheme too short", "file://a.jpg", exampleLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.uri)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidURI))

			var uriErr *InvalidURIError
			require.True(t, errors.As(err, &uriErr))
			assert.Equal(t, tt.uri, uriErr.URI)
			assert.Equal(t, tt.example, uriErr.Example)
			assert.Contains(t, err.Error(), "example:")
		})
	}
}

func TestParse_EmptyKeyAllowed(t *testing.T) {
	loc, err := Parse("s3://bucket/")
	require.NoError(t, err)
	assert.Equal(t, "bucket", loc.Bucket())
	assert.Equal(t, "", loc.Key())
}

func TestString_RoundTrip(t *testing.T) {
	uris := []string{
		"s3://bucket/a/b/c.jpg",
		"s3://bucket/",
		"photos/a.jpg",
		"/abs/a.jpg",
		"a.jpg",
		"file:///abs/a.jpg",
	}

	for _, uri := range uris {
		t.Run(uri, func(t *testing.T) {
			loc := MustParse(uri)
			again, err := Parse(loc.String())
			require.NoError(t, err)
			assert.Equal(t, loc, again)
		})
	}
}

func TestJoin(t *testing.T) {
	root := MustParse("s3://cache/sub/dir")

	assert.Equal(t, "s3://cache/sub/dir/a/b/", root.Join("a/b/").String())
	assert.Equal(t, "s3://cache/sub/dir/x", MustParse("s3://cache/sub/dir/").Join("x").String())
	assert.Equal(t, "s3://cache/x", MustParse("s3://cache/").Join("x").String())

	local := MustParse("/var/cache/thumbs")
	assert.Equal(t, "/var/cache/thumbs/s3_b/x.jpg", local.Join("s3_b/x.jpg").Path())

	// Join never mutates the receiver.
	assert.Equal(t, "s3://cache/sub/dir", root.String())
}

func TestConstructors(t *testing.T) {
	obj, err := Object("bucket", "k/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, MustParse("s3://bucket/k/x.jpg"), obj)

	_, err = Object("", "k")
	assert.ErrorIs(t, err, ErrInvalidURI)

	_, err = Object("a/b", "k")
	assert.ErrorIs(t, err, ErrInvalidURI)

	local, err := Local("/tmp/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, KindLocal, local.Kind())

	_, err = Local("")
	assert.ErrorIs(t, err, ErrInvalidURI)

	assert.True(t, Location{}.IsZero())
	assert.False(t, obj.IsZero())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("http://nope") })
}
