package storage

import (
	"context"
	"fmt"
	"os"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"coursecast/internal/config"
	"coursecast/internal/services"
	"coursecast/internal/textutil"
)

// S3Sink uploads artifacts to an S3 bucket under
// <prefix>/<owner>/<kind>/<name>.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink resolves AWS credentials from the environment and builds a sink
// for the configured bucket.
func NewS3Sink(ctx context.Context, cfg config.Storage) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "s3", "bucket is not configured", nil)
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "s3", "load aws configuration", err)
	}
	return &S3Sink{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *S3Sink) Upload(ctx context.Context, localPath, destinationName string, ownerID int64, kind string) (string, error) {
	if kind == "" {
		kind = "video"
	}
	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "storage", "s3", "open artifact for upload", err)
	}
	defer file.Close()

	key := path.Join(s.prefix, fmt.Sprintf("%d", ownerID), textutil.SanitizeToken(kind), textutil.SanitizeFileName(destinationName))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   file,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "storage", "s3",
			fmt.Sprintf("upload to bucket %s failed", s.bucket), err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
