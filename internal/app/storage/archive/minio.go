package archive

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"media2text/internal/app/errors"
)

// MinioConfig locates the archive bucket.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// objectStore is the subset of *minio.Client the archiver uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinioArchiver uploads processed files to an S3-compatible bucket and
// removes the local copy.
type MinioArchiver struct {
	store  objectStore
	bucket string
	prefix string
	logger *zap.Logger
}

var _ Archiver = (*MinioArchiver)(nil)

// NewMinioArchiver connects to the endpoint and creates the bucket when it
// does not exist yet.
func NewMinioArchiver(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioArchiver, error) {
	if cfg.Endpoint == "" {
		return nil, errors.RequiredField("minio endpoint")
	}
	if cfg.Bucket == "" {
		return nil, errors.RequiredField("minio bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MinIO client")
	}
	a := newMinioArchiver(client, cfg.Bucket, cfg.Prefix, logger)
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newMinioArchiver(store objectStore, bucket, prefix string, logger *zap.Logger) *MinioArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &MinioArchiver{store: store, bucket: bucket, prefix: prefix, logger: logger}
}

func (a *MinioArchiver) ensureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", a.bucket)
	}
	if exists {
		return nil
	}
	if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "create bucket %s", a.bucket)
	}
	a.logger.Info("created archive bucket", zap.String("bucket", a.bucket))
	return nil
}

func (a *MinioArchiver) List(ctx context.Context) (map[string]bool, error) {
	names := make(map[string]bool)
	for obj := range a.store.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "list bucket %s", a.bucket)
		}
		name := path.Base(strings.TrimPrefix(obj.Key, a.prefix))
		if name != "" && name != "." && name != "/" {
			names[name] = true
		}
	}
	return names, nil
}

func (a *MinioArchiver) Archive(ctx context.Context, srcPath string) error {
	if _, err := os.Stat(srcPath); os.IsNotExist(err) {
		return errors.NotFound("source file", srcPath)
	}

	key := a.prefix + filepath.Base(srcPath)
	contentType := mime.TypeByExtension(filepath.Ext(srcPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := a.store.FPutObject(ctx, a.bucket, key, srcPath, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-name": filepath.Base(srcPath)},
	})
	if err != nil {
		return errors.Wrapf(err, "upload %s to %s", srcPath, a.bucket)
	}
	if err := os.Remove(srcPath); err != nil {
		return errors.Wrapf(err, "remove %s after upload", srcPath)
	}

	a.logger.Debug("archived to bucket",
		zap.String("file", srcPath),
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size))
	return nil
}
