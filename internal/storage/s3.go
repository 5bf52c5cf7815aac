package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/config"
)

// S3Uploader streams files to a bucket with the multipart upload manager.
type S3Uploader struct {
	bucket   string
	uploader *manager.Uploader
}

// NewS3Uploader builds a client from cfg.  Static credentials are used
// when an access key is set; otherwise the default AWS chain applies.  A
// custom Endpoint switches to path-style addressing for S3-compatible
// stores.
func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{bucket: cfg.Bucket, uploader: manager.NewUploader(client)}, nil
}

// New returns an S3 uploader, or the disabled one when no bucket is set.
func New(ctx context.Context, cfg config.S3Config) (Uploader, error) {
	if cfg.Bucket == "" {
		log.Warn().Msg("S3_BUCKET not set, file uploads disabled")
		return Disabled(), nil
	}
	return NewS3Uploader(ctx, cfg)
}

// Upload validates f and puts it under ObjectKey.  The returned string is
// the object URL reported by S3.
func (u *S3Uploader) Upload(ctx context.Context, f File, itemType string, itemID uint) (string, error) {
	if err := CheckImage(f); err != nil {
		return "", err
	}
	key := ObjectKey(itemType, itemID, f.Name)
	out, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f.Body,
		ContentType: aws.String(f.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	log.Debug().Str("key", key).Int64("size", f.Size).Msg("object uploaded")
	return out.Location, nil
}
