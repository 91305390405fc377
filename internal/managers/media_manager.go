package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MediaMgr is an interface that outlines the contract for the media store.
// Upload takes a local file and returns a durable URL for it.
type MediaMgr interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// MediaManager uploads post images to an S3-compatible bucket.
type MediaManager struct {
	bucket    string
	publicURL string

	client *s3.Client
}

// NewMediaManager creates a MediaManager from the S3_* environment variables.
// The endpoint may point at any S3-compatible store such as MinIO.
func NewMediaManager() (MediaMgr, error) {
	log.Info("Initializing media manager")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(os.Getenv("S3_REGION")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("S3_ACCESS_KEY"),
			os.Getenv("S3_SECRET_KEY"),
			"",
		)))
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := os.Getenv("S3_PUBLIC_URL")
	if publicURL == "" {
		publicURL = endpoint
	}

	return &MediaManager{
		bucket:    os.Getenv("S3_BUCKET"),
		publicURL: publicURL,
		client:    client,
	}, nil
}

// RandomStorageKey returns a unique object key, partitioned by date.
func RandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("posts/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// Upload stores the file at localPath under the given key and returns its
// public URL. The caller removes the local file regardless of the outcome.
func (mm *MediaManager) Upload(ctx context.Context, localPath, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	_, err = mm.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(mm.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		log.Warning("Error uploading media: " + err.Error())
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s", mm.publicURL, mm.bucket, key)
	log.Debug("Media uploaded to ", url)
	return url, nil
}
