// Package archive uploads processed recordings to an object-storage
// bucket and returns their public URLs.
package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"scribe/internal/services"
)

// Config holds the object-storage sink settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Uploader stores processed audio in an S3-compatible bucket.
type Uploader struct {
	cfg    Config
	client *minio.Client
}

// NewUploader builds the uploader client.
func NewUploader(cfg Config) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("build archive client: %w", err)
	}
	return &Uploader{cfg: cfg, client: client}, nil
}

// Put uploads localPath under key and returns the object URL.
func (u *Uploader) Put(ctx context.Context, localPath, key string) (string, error) {
	key = strings.Trim(key, "/")
	if u.cfg.Prefix != "" {
		key = u.cfg.Prefix + "/" + key
	}
	if _, err := u.client.FPutObject(ctx, u.cfg.Bucket, key, localPath, minio.PutObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		retryable := resp.StatusCode == 0 || services.RetryableHTTPStatus(resp.StatusCode)
		return "", services.NewExternalService("archive", "put "+key, err, retryable)
	}
	return u.objectURL(key), nil
}

func (u *Uploader) objectURL(key string) string {
	scheme := "https"
	if !u.cfg.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, u.cfg.Endpoint, u.cfg.Bucket, key)
}
