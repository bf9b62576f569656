package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"scribe/internal/services"
)

// MinioConfig holds the connection settings for the S3-compatible store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioConnector opens minio-backed remote clients.
type MinioConnector struct {
	cfg MinioConfig
}

// NewMinioConnector builds a connector from the given settings.
func NewMinioConnector(cfg MinioConfig) *MinioConnector {
	return &MinioConnector{cfg: cfg}
}

// Connect builds the client and probes the bucket so that connectivity and
// credential problems surface before a run starts processing.
func (c *MinioConnector) Connect(ctx context.Context) (Client, error) {
	cli, err := minio.New(c.cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.cfg.AccessKey, c.cfg.SecretKey, ""),
		Secure: c.cfg.UseSSL,
		Region: c.cfg.Region,
	})
	if err != nil {
		return nil, services.NewRemoteAccess("connect", c.cfg.Endpoint, "", err)
	}

	exists, err := cli.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return nil, wrapMinioError("connect", c.cfg.Endpoint, c.cfg.Bucket, err)
	}
	if !exists {
		return nil, services.NewRemoteAccess("connect", c.cfg.Endpoint, c.cfg.Bucket,
			fmt.Errorf("bucket %q not found", c.cfg.Bucket))
	}

	return &MinioClient{client: cli, endpoint: c.cfg.Endpoint, bucket: c.cfg.Bucket}, nil
}

// MinioClient adapts an S3-compatible bucket to the Client interface,
// treating "/"-delimited keys as the directory hierarchy.
type MinioClient struct {
	client   *minio.Client
	endpoint string
	bucket   string
}

// List returns the immediate children of dir. Common prefixes come back as
// directories, objects as files.
func (m *MinioClient) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}

	var entries []Entry
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return nil, wrapMinioError("list", m.endpoint, dir, object.Err)
		}
		name := strings.TrimPrefix(object.Key, prefix)
		if name == "" {
			continue
		}
		if strings.HasSuffix(name, "/") {
			entries = append(entries, Entry{Name: strings.TrimSuffix(name, "/"), Type: EntryDir})
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Type:    EntryFile,
			Size:    object.Size,
			ModTime: object.LastModified,
		})
	}
	return entries, nil
}

// Fetch downloads remotePath into localPath.
func (m *MinioClient) Fetch(ctx context.Context, remotePath, localPath string) error {
	key := strings.Trim(remotePath, "/")
	if err := m.client.FGetObject(ctx, m.bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return wrapMinioError("fetch", m.endpoint, remotePath, err)
	}
	return nil
}

// Close releases the client. The S3 transport holds no persistent session,
// so there is nothing to tear down beyond dropping the reference.
func (m *MinioClient) Close() error {
	m.client = nil
	return nil
}

func wrapMinioError(op, endpoint, path string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return services.NewRemoteAuth(op, endpoint, err)
	}
	return services.NewRemoteAccess(op, endpoint, path, err)
}
