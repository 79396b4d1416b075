// Package avatar stores profile pictures in an S3 compatible bucket.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/logger"
)

// MaxSize is the largest accepted avatar, in bytes.
const MaxSize = 5 << 20

// Options configure the bucket.
type Options struct {
	Bucket string
	Region string
	// Endpoint of an S3 compatible service, empty for AWS.
	Endpoint string
	// PublicBaseURL is the public address of the bucket content, when it is
	// served from elsewhere (CDN, custom domain).
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Storage implements coinfolio.AvatarStorage.
type Storage struct {
	opts   Options
	client *s3.Client
	log    *logger.Entry
}

var _ coinfolio.AvatarStorage = (*Storage)(nil)

// New returns a storage for the bucket. Credentials default to the AWS
// environment when no static key is given.
func New(ctx context.Context, opts Options) (*Storage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("avatar bucket not configured")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKeyID,
				opts.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &Storage{opts: opts, client: client, log: logger.GetLogger().WithComponent("avatar")}, nil
}

// Upload stores body under key, replacing any previous object, and returns its
// public URL.
func (s *Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("avatar larger than %d bytes", MaxSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty avatar")
	}

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.opts.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	s.log.WithFields(logger.Fields{"key": key, "bytes": len(data)}).Info("avatar uploaded")
	return s.PublicURL(key), nil
}

// PublicURL is the address the object key is served at.
func (s *Storage) PublicURL(key string) string {
	escaped := url.PathEscape(key)
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + escaped
	case s.opts.Endpoint != "":
		return strings.TrimSuffix(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, escaped)
	}
}
