package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore keeps recipe images in an S3-compatible bucket and hands
// out public path-style URLs.
type ImageStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

func New(ctx context.Context, cfg config.ImageStore) (*ImageStore, error) {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	endpointURL := scheme + "://" + cfg.Endpoint

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{ //nolint:exhaustruct
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{ //nolint:exhaustruct
			Bucket: aws.String(cfg.Bucket),
		}); err != nil {
			return nil, fmt.Errorf("create bucket error: %w", err)
		}
	}

	return &ImageStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		baseURL:  endpointURL + "/" + cfg.Bucket + "/",
	}, nil
}

func (is *ImageStore) Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error) {
	if _, err := is.uploader.Upload(ctx, &s3.PutObjectInput{ //nolint:exhaustruct
		Bucket:      aws.String(is.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("upload object error: %w", err)
	}

	return is.baseURL + objectKey, nil
}

// Delete removes a previously uploaded object by its public URL.
// URLs issued by another store instance are ignored.
func (is *ImageStore) Delete(ctx context.Context, imageURL string) error {
	objectKey, ok := strings.CutPrefix(imageURL, is.baseURL)
	if !ok {
		return nil
	}

	if _, err := is.client.DeleteObject(ctx, &s3.DeleteObjectInput{ //nolint:exhaustruct
		Bucket: aws.String(is.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete object error: %w", err)
	}

	return nil
}
