package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fraccaro/event-calendar-backend/config"
)

// s3Store keeps images in an S3 bucket under events/<filename>. Works with
// any S3-compatible endpoint (AWS, Tigris, MinIO) via S3_ENDPOINT.
type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

func NewS3Store(cfg *config.Config) (Store, error) {
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("S3 media store not configured (S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY)")
	}

	region := cfg.S3Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.S3Endpoint, "/"), cfg.S3Bucket)
	}

	return &s3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: time.Duration(cfg.MediaTimeout) * time.Second,
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, file File) (string, error) {
	if err := validate(file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	key := fmt.Sprintf("events/%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from S3: %w", err)
	}
	return nil
}

// keyFromRef extracts the object key from a stored gallery reference
func (s *s3Store) keyFromRef(ref string) (string, error) {
	if key, ok := strings.CutPrefix(ref, s.baseURL+"/"); ok {
		return key, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", ErrUnknownRef
	}
	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimPrefix(path, s.bucket+"/")
	if path == "" {
		return "", ErrUnknownRef
	}
	return path, nil
}
