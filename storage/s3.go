// Package storage persists raw harvested XML to S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Config contains settings for the raw-XML store. Region and Profile are
// optional and fall back to the standard AWS config/credential chain.
type Config struct {
	Bucket string
	Prefix string
	Region string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// UsePathStyle forces path-style addressing (useful for some
	// S3-compatible providers).
	UsePathStyle bool
}

// StoredObject describes where one raw XML document landed.
type StoredObject struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
}

// Store wraps the AWS SDK v2 S3 client with the narrow surface the
// harvester needs.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore creates a store using the default AWS configuration chain with
// optional overrides from cfg.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._/-]+`)

// SaveRawXML uploads one raw XML document under a label such as
// "<journalKey>/page-0001" and returns where it landed. The object key is
// timestamped so repeated harvests never overwrite earlier captures.
func (s *Store) SaveRawXML(ctx context.Context, content, label, sourceURL string) (StoredObject, error) {
	label = unsafeKeyChars.ReplaceAllString(strings.Trim(label, "/"), "-")
	filename := fmt.Sprintf("%s-%s.xml", label, time.Now().UTC().Format("20060102T150405Z"))
	key := s.prefix + filename

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("application/xml"),
		Metadata:    map[string]string{"source-url": sourceURL},
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to upload raw XML to S3: %w", err)
	}

	return StoredObject{
		URL:         fmt.Sprintf("s3://%s/%s", s.bucket, key),
		Key:         key,
		Path:        s.prefix + label,
		Filename:    filename,
		Size:        len(content),
		ContentType: "application/xml",
	}, nil
}

// Ping verifies the configured bucket is reachable. A missing bucket is
// reported as an error; transient 404s from HeadBucket are translated so
// callers get a plain error instead of an SDK response type.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return err
}
