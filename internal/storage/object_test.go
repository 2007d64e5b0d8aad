package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/thumbnailer/internal/location"
	"github.com/ironsheep/thumbnailer/internal/storage/storagetest"
)

func newFakeObject(t *testing.T) (*ObjectBackend, *storagetest.FakeS3) {
	t.Helper()
	fake := storagetest.NewFakeS3()
	b := NewObjectBackend(func(context.Context) (ObjectAPI, error) { return fake, nil }, nil)
	return b, fake
}

func TestObject_WriteReadExistsRemove(t *testing.T) {
	ctx := context.Background()
	b, fake := newFakeObject(t)
	loc := location.MustParse("s3://bucket/photos/a.jpg")

	exists, err := b.Exists(ctx, loc)
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err := b.Write(ctx, loc, []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.True(t, ok)

	stored, found := fake.Object("bucket", "photos/a.jpg")
	require.True(t, found)
	assert.Equal(t, "jpeg bytes", string(stored))

	exists, err = b.Exists(ctx, loc)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := b.Read(ctx, loc, 4)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	data, err = b.Read(ctx, loc, 0)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	ok, err = b.Remove(ctx, loc)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = b.Read(ctx, loc, 0)
	assert.True(t, IsNotFound(err))
}

func TestObject_Forbidden(t *testing.T) {
	ctx := context.Background()
	b, fake := newFakeObject(t)
	fake.Deny("private")
	loc := location.MustParse("s3://private/key.jpg")

	_, err := b.Read(ctx, loc, 0)
	assert.True(t, IsForbidden(err))

	ok, err := b.Write(ctx, loc, []byte("x"))
	assert.False(t, ok)
	assert.True(t, IsForbidden(err))

	ok, err = b.Remove(ctx, loc)
	assert.False(t, ok)
	assert.True(t, IsForbidden(err))

	_, err = b.Exists(ctx, loc)
	assert.True(t, IsForbidden(err))

	_, err = b.List(ctx, loc, 1)
	assert.True(t, IsForbidden(err))
}

func TestObject_WriteFailureIsNotAnError(t *testing.T) {
	b, fake := newFakeObject(t)
	fake.PutErr = &smithy.GenericAPIError{Code: "InternalError"}

	ok, err := b.Write(context.Background(), location.MustParse("s3://bucket/k.jpg"), []byte("x"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestObject_List(t *testing.T) {
	ctx := context.Background()
	b, fake := newFakeObject(t)
	for _, k := range []string{"p/a/3.jpg", "p/a/1.jpg", "p/a/2.jpg", "p/ab/1.jpg", "q/1.jpg"} {
		fake.Seed("cache", k, []byte(k))
	}

	got, err := b.List(ctx, location.MustParse("s3://cache/p/a/"), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "s3://cache/p/a/1.jpg", got[0].String())

	got, err = b.List(ctx, location.MustParse("s3://cache/p/a/"), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p/a/1.jpg", got[0].Key())

	got, err = b.List(ctx, location.MustParse("s3://cache/zzz/"), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestObject_ClientBuiltOnce(t *testing.T) {
	fake := storagetest.NewFakeS3()
	var builds int32
	b := NewObjectBackend(func(context.Context) (ObjectAPI, error) {
		atomic.AddInt32(&builds, 1)
		return fake, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Exists(context.Background(), location.MustParse("s3://bucket/k.jpg"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestObject_ClientBuildFailureRetries(t *testing.T) {
	fake := storagetest.NewFakeS3()
	calls := 0
	b := NewObjectBackend(func(context.Context) (ObjectAPI, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("no credentials")
		}
		return fake, nil
	}, nil)

	_, err := b.Client(context.Background())
	require.Error(t, err)

	c, err := b.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, c)
	assert.Equal(t, 2, calls)
}
