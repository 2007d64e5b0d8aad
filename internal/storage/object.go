package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/ironsheep/thumbnailer/internal/location"
	"github.com/ironsheep/thumbnailer/internal/logging"
)

const (
	httpTimeout  = 30 * time.Second
	maxIdleConns = 100

	// S3 caps a single ListObjectsV2 page at 1000 keys.
	maxListPage = 1000
)

// ObjectAPI is the subset of *s3.Client the backend calls.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// ClientFactory builds the S3 client on first use.
type ClientFactory func(ctx context.Context) (ObjectAPI, error)

// S3Config selects the S3 endpoint. Credentials always come from the default
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region string

	// Endpoint targets an S3-compatible service. Path-style addressing is
	// enabled whenever it is set.
	Endpoint string
}

// NewS3ClientFactory returns a ClientFactory that loads the default AWS
// configuration and applies cfg on top of it.
func NewS3ClientFactory(cfg S3Config) ClientFactory {
	return func(ctx context.Context) (ObjectAPI, error) {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithHTTPClient(&http.Client{
				Timeout: httpTimeout,
				Transport: &http.Transport{
					MaxIdleConns:        maxIdleConns,
					MaxIdleConnsPerHost: maxIdleConns,
					IdleConnTimeout:     90 * time.Second,
				},
			}),
			// Retries are the caller's decision.
			awsconfig.WithRetryMaxAttempts(1),
		}
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		}), nil
	}
}

// ObjectBackend stores blobs in S3.
type ObjectBackend struct {
	newClient ClientFactory
	logger    logging.Interface

	mu     sync.Mutex
	client ObjectAPI
}

// NewObjectBackend creates a backend whose client is built by factory on
// first use.
func NewObjectBackend(factory ClientFactory, logger logging.Interface) *ObjectBackend {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ObjectBackend{newClient: factory, logger: logger.WithField("backend", "s3")}
}

// Client returns the shared client, building it if this is the first call.
func (b *ObjectBackend) Client(ctx context.Context) (ObjectAPI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		return b.client, nil
	}
	client, err := b.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	b.client = client
	b.logger.Info("S3 client initialized")
	return client, nil
}

// classifyObject maps SDK errors onto the package taxonomy.
func classifyObject(op string, loc location.Location, err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return newError(op, loc.String(), fmt.Errorf("%w: %v", ErrNotFound, err))
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return newError(op, loc.String(), fmt.Errorf("%w: %v", ErrNotFound, err))
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId",
			"SignatureDoesNotMatch", "AccountProblem":
			return newError(op, loc.String(), fmt.Errorf("%w: %v", ErrForbidden, err))
		}
	}

	// HEAD responses carry no error body; fall back to the status code.
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return newError(op, loc.String(), fmt.Errorf("%w: %v", ErrNotFound, err))
		case http.StatusForbidden:
			return newError(op, loc.String(), fmt.Errorf("%w: %v", ErrForbidden, err))
		}
	}

	return newError(op, loc.String(), err)
}

func (b *ObjectBackend) Exists(ctx context.Context, loc location.Location) (bool, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return false, err
	}
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket()),
		Key:    aws.String(loc.Key()),
	})
	if err != nil {
		err = classifyObject("exists", loc, err)
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *ObjectBackend) Read(ctx context.Context, loc location.Location, limit int64) ([]byte, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket()),
		Key:    aws.String(loc.Key()),
	})
	if err != nil {
		err = classifyObject("read", loc, err)
		b.logger.WithField("uri", loc.String()).WithError(err).Error("failed to read")
		return nil, err
	}
	defer out.Body.Close()

	var r io.Reader = out.Body
	if limit > 0 {
		r = io.LimitReader(out.Body, limit)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError("read", loc.String(), err)
	}
	return data, nil
}

func (b *ObjectBackend) Write(ctx context.Context, loc location.Location, data []byte) (bool, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return false, err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket()),
		Key:           aws.String(loc.Key()),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		err = classifyObject("write", loc, err)
		if IsForbidden(err) {
			return false, err
		}
		b.logger.WithField("uri", loc.String()).WithError(err).Error("failed writing")
		return false, nil
	}
	return true, nil
}

func (b *ObjectBackend) Remove(ctx context.Context, loc location.Location) (bool, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return false, err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket()),
		Key:    aws.String(loc.Key()),
	})
	if err != nil {
		err = classifyObject("remove", loc, err)
		if IsForbidden(err) {
			return false, err
		}
		b.logger.WithField("uri", loc.String()).WithError(err).Error("failed removing")
		return false, nil
	}
	return true, nil
}

// List pages through ListObjectsV2. S3 returns keys in ascending UTF-8
// binary order.
func (b *ObjectBackend) List(ctx context.Context, prefix location.Location, limit int) ([]location.Location, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := int32(maxListPage)
	if limit > 0 && limit < maxListPage {
		pageSize = int32(limit)
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(prefix.Bucket()),
		Prefix:  aws.String(prefix.Key()),
		MaxKeys: aws.Int32(pageSize),
	})

	var out []location.Location
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyObject("list", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			loc, err := location.Object(prefix.Bucket(), *obj.Key)
			if err != nil {
				return nil, err
			}
			out = append(out, loc)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}
