package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3Scheme = "s3://"

// S3Config locates an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Insecure  bool
}

// S3 opens s3://bucket/key sources.
type S3 struct {
	client *minio.Client
}

// NewS3 creates an opener for the endpoint in cfg.
func NewS3(cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", cfg.Endpoint, err)
	}
	return &S3{client: client}, nil
}

// ParseS3Path splits s3://bucket/key into its bucket and key.
func ParseS3Path(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse %s: %w", path, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%s is not an s3://bucket/key path", path)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%s has no object key", path)
	}
	return u.Host, key, nil
}

// Open implements Opener.
func (s *S3) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return nil, err
	}

	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" || errResp.Code == "NotFound" {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, err
	}

	sourceLogger.Debug("Opening s3 object %s/%s (%d bytes)", bucket, key, info.Size)
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
