// Package storagetest provides an in-memory stand-in for the S3 API.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// FakeS3 implements storage.ObjectAPI over a map. It is safe for concurrent
// use.
type FakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	denied  map[string]bool

	// PutErr, when set, is returned by every PutObject call.
	PutErr error

	Puts  int
	Lists int
}

// NewFakeS3 returns an empty store.
func NewFakeS3() *FakeS3 {
	return &FakeS3{
		objects: make(map[string][]byte),
		denied:  make(map[string]bool),
	}
}

func objectKey(bucket, key string) string { return bucket + "/" + key }

// Deny makes every call against bucket fail with AccessDenied.
func (f *FakeS3) Deny(bucket string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied[bucket] = true
}

// Seed stores data without going through PutObject.
func (f *FakeS3) Seed(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(bucket, key)] = append([]byte(nil), data...)
}

// Object returns the stored bytes for bucket/key.
func (f *FakeS3) Object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectKey(bucket, key)]
	return data, ok
}

// Keys returns every key stored in bucket, sorted.
func (f *FakeS3) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, bucket+"/") {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(keys)
	return keys
}

func accessDenied() error {
	return &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
}

func (f *FakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied[aws.ToString(in.Bucket)] {
		return nil, accessDenied()
	}
	data, ok := f.objects[objectKey(aws.ToString(in.Bucket), aws.ToString(in.Key))]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *FakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied[aws.ToString(in.Bucket)] {
		return nil, &smithy.GenericAPIError{Code: "Forbidden"}
	}
	data, ok := f.objects[objectKey(aws.ToString(in.Bucket), aws.ToString(in.Key))]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *FakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Puts++
	if f.denied[aws.ToString(in.Bucket)] {
		return nil, accessDenied()
	}
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[objectKey(aws.ToString(in.Bucket), aws.ToString(in.Key))] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *FakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied[aws.ToString(in.Bucket)] {
		return nil, accessDenied()
	}
	// S3 deletes are idempotent: a missing key still succeeds.
	delete(f.objects, objectKey(aws.ToString(in.Bucket), aws.ToString(in.Key)))
	return &s3.DeleteObjectOutput{}, nil
}

// ListObjectsV2 returns keys in ascending order and honours MaxKeys and
// ContinuationToken.
func (f *FakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	f.Lists++
	denied := f.denied[aws.ToString(in.Bucket)]
	f.mu.Unlock()
	if denied {
		return nil, accessDenied()
	}

	prefix := aws.ToString(in.Prefix)
	after := aws.ToString(in.ContinuationToken)
	maxKeys := int(aws.ToInt32(in.MaxKeys))
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	var contents []types.Object
	truncated := false
	for _, key := range f.Keys(aws.ToString(in.Bucket)) {
		if !strings.HasPrefix(key, prefix) || (after != "" && key <= after) {
			continue
		}
		if len(contents) == maxKeys {
			truncated = true
			break
		}
		contents = append(contents, types.Object{Key: aws.String(key)})
	}

	out := &s3.ListObjectsV2Output{
		Contents:    contents,
		KeyCount:    aws.Int32(int32(len(contents))),
		IsTruncated: aws.Bool(truncated),
	}
	if truncated {
		out.NextContinuationToken = contents[len(contents)-1].Key
	}
	return out, nil
}
