package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"pariksha/paper-share/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// s3Storage implements the FileStorage interface using an S3-compatible
// backend (Cloudflare R2, MinIO, AWS S3).
type s3Storage struct {
	client     *s3.Client
	bucketName string
	publicURL  string // public read base URL of the bucket, no trailing slash
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(cfg config.S3Config) (FileStorage, error) {
	// Custom resolver for S3-compatible endpoints (like R2, MinIO)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load AWS SDK config for S3")
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.BucketName).
		Msg("S3 storage service initialized")

	return &s3Storage{
		client:     s3Client,
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload writes the object and returns its public locator. A failed write
// returns an error and nothing else happens; metadata for the object is
// only ever created after this succeeds.
func (s *s3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload object")
		return "", fmt.Errorf("upload object %q: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes the object behind fileURL. Failures are reported, never
// raised: metadata deletion must be able to proceed whatever happens here.
func (s *s3Storage) Delete(ctx context.Context, fileURL string) DeleteResult {
	if fileURL == "" {
		return DeleteResult{Deleted: false, Error: "no file to delete"}
	}

	key := s.objectKeyFromURL(fileURL)
	if key == "" {
		log.Warn().Str("fileUrl", fileURL).Msg("could not determine object key from locator")
		return DeleteResult{Deleted: false, Error: "could not determine object key from locator"}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("bucket", s.bucketName).Msg("failed to delete object")
		return DeleteResult{Deleted: false, Key: key, Error: err.Error()}
	}

	log.Info().Str("key", key).Str("bucket", s.bucketName).Msg("deleted object")
	return DeleteResult{Deleted: true, Key: key}
}

// objectKeyFromURL resolves the storage key behind a locator. Locators are
// normally <publicURL>/<key>; older records may carry other hosts, so the
// prefix check is followed by URL-path parsing and finally a plain split
// on the last path separator. An empty return means the key is unknown.
func (s *s3Storage) objectKeyFromURL(fileURL string) string {
	if s.publicURL != "" && strings.HasPrefix(fileURL, s.publicURL+"/") {
		return strings.TrimPrefix(fileURL, s.publicURL+"/")
	}

	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		return strings.TrimPrefix(u.Path, "/")
	}

	if idx := strings.LastIndex(fileURL, "/"); idx >= 0 && idx < len(fileURL)-1 {
		return fileURL[idx+1:]
	}

	return ""
}
