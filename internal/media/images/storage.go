// Package images validates item image uploads, computes BlurHash
// placeholders and stores the bytes inline or in S3-compatible storage.
package images

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

const s3Scheme = "s3://"

// Storage persists validated images and turns stored references back into
// something a browser can load.
type Storage interface {
	// Put stores img under key and returns the reference kept in the row.
	Put(ctx context.Context, key string, img *Image) (string, error)
	// Resolve returns a client-loadable URL (or data URI) for ref.
	Resolve(ctx context.Context, ref string) (string, error)
	// Delete removes the object behind ref, if any.
	Delete(ctx context.Context, ref string) error
}

// InlineStorage keeps images as data URIs in the row itself.
type InlineStorage struct{}

// Put returns the canonical data URI for img.
func (InlineStorage) Put(_ context.Context, _ string, img *Image) (string, error) {
	return img.DataURI(), nil
}

// Resolve returns ref unchanged.
func (InlineStorage) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// Delete is a no-op; the data goes away with the row.
func (InlineStorage) Delete(context.Context, string) error {
	return nil
}

// objectAPI is the subset of *s3.Client used by S3Storage.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// presignAPI produces presigned GET URLs.
type presignAPI interface {
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type presignClient struct {
	client *s3.PresignClient
}

func (p presignClient) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// S3Config holds object storage settings.
type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string // Optional, for MinIO and other S3-compatible stores
	KeyID      string
	Secret     string
	PresignTTL time.Duration
	Timeout    time.Duration
}

// S3Storage stores images as objects and serves them through presigned GET URLs.
type S3Storage struct {
	objects    objectAPI
	presigner  presignAPI
	bucket     string
	presignTTL time.Duration
	timeout    time.Duration
}

// NewS3Storage builds an S3 client from cfg. Static credentials are used
// when provided, otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.KeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.Secret, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		objects:    client,
		presigner:  presignClient{s3.NewPresignClient(client)},
		bucket:     cfg.Bucket,
		presignTTL: cfg.PresignTTL,
		timeout:    cfg.Timeout,
	}, nil
}

// Put uploads img and returns s3://bucket/key.
func (s *S3Storage) Put(ctx context.Context, key string, img *Image) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", domainerrors.UpstreamUnavailable("object storage", err)
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

// Resolve presigns a GET for s3:// references; other values pass through.
func (s *S3Storage) Resolve(ctx context.Context, ref string) (string, error) {
	bucket, key, ok := parseRef(ref)
	if !ok {
		return ref, nil
	}

	u, err := s.presigner.PresignGetURL(ctx, bucket, key, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return u, nil
}

// Delete removes the object behind an s3:// reference.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	bucket, key, ok := parseRef(ref)
	if !ok {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return domainerrors.UpstreamUnavailable("object storage", err)
	}
	return nil
}

func (s *S3Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// parseRef splits s3://bucket/key.
func parseRef(ref string) (bucket, key string, ok bool) {
	rest, ok := strings.CutPrefix(ref, s3Scheme)
	if !ok {
		return "", "", false
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
