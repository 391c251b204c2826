// Package assets uploads product photos to S3-compatible object storage and
// removes them again when they are replaced or their product is deleted.
package assets

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Host stores a local file under a durable URL.
type Host interface {
	Upload(ctx context.Context, localPath string) (url string, err error)
	Destroy(ctx context.Context, objectKey string) error
}

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicURL prefixes object keys in returned URLs. Defaults to
	// <scheme>://<endpoint>/<bucket>.
	PublicURL string
	// MaxDimension > 0 downsizes larger images before upload.
	MaxDimension int
}

type Minio struct {
	cl        *minio.Client
	bucket    string
	publicURL string
	maxDim    int
	log       zerolog.Logger
}

func NewMinio(ctx context.Context, cfg Config, log zerolog.Logger) (*Minio, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	ok, err := cl.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket %q: %w", cfg.Bucket, err)
	}
	if !ok {
		if err := cl.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	public := strings.TrimSuffix(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Minio{cl: cl, bucket: cfg.Bucket, publicURL: public, maxDim: cfg.MaxDimension, log: log}, nil
}

// Upload stores the file under v<unix>/<uuid><ext> and returns its public URL.
func (m *Minio) Upload(ctx context.Context, localPath string) (string, error) {
	if m.maxDim > 0 {
		if err := fitImage(localPath, m.maxDim); err != nil {
			m.log.Warn().Err(err).Str("path", localPath).Msg("resize skipped")
		}
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	key := objectKey(time.Now(), uuid.NewString(), ext)
	if _, err := m.cl.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: mime.TypeByExtension(ext),
	}); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	m.log.Debug().Str("key", key).Msg("asset uploaded")
	return m.publicURL + "/" + key, nil
}

func (m *Minio) Destroy(ctx context.Context, key string) error {
	if err := m.cl.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	m.log.Debug().Str("key", key).Msg("asset destroyed")
	return nil
}

func (m *Minio) Ping(ctx context.Context) error {
	_, err := m.cl.BucketExists(ctx, m.bucket)
	return err
}

func objectKey(t time.Time, id, ext string) string {
	return fmt.Sprintf("v%d/%s%s", t.Unix(), id, ext)
}

var objectKeyRe = regexp.MustCompile(`/(v\d+/[^/]+\.[a-z0-9]+)$`)

// ObjectKeyFromURL extracts the object key from a URL returned by Upload.
func ObjectKeyFromURL(url string) (string, bool) {
	m := objectKeyRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
