// Package archive stores CSV exports in S3-compatible object storage and
// hands out presigned download links.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no bucket is configured.
var ErrNotConfigured = errors.New("export archive not configured")

// Config configures an S3Archiver.
type Config struct {
	Bucket     string
	Region     string
	Endpoint   string // empty = AWS default endpoint resolution
	AccessKey  string // empty = default credential chain
	SecretKey  string
	Prefix     string
	PresignTTL time.Duration
	PathStyle  bool
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Archiver uploads exports and presigns GET links for them.
type S3Archiver struct {
	client    objectPutter
	presigner getPresigner
	bucket    string
	prefix    string
	ttl       time.Duration
	now       func() time.Time
}

// NewS3Archiver builds an archiver from cfg using the AWS SDK default
// configuration chain, overridden by static credentials when given.
func NewS3Archiver(ctx context.Context, cfg Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newArchiver(client, s3.NewPresignClient(client), cfg), nil
}

func newArchiver(client objectPutter, presigner getPresigner, cfg Config) *S3Archiver {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Archiver{
		client:    client,
		presigner: presigner,
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Key returns a fresh object key of the form prefix/exports/YYYY/MM/DD/<uuid>.csv.
func (a *S3Archiver) Key() string {
	d := a.now().UTC()
	return path.Join(a.prefix, "exports", d.Format("2006/01/02"), uuid.NewString()+".csv")
}

// Archive uploads data under key and returns a presigned download URL.
func (a *S3Archiver) Archive(ctx context.Context, key string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(a.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(`attachment; filename="buyers.csv"`),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}
