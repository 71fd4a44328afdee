// Package s3util uploads finished reports to S3.
package s3util

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// XLSXContentType is the MIME type of xlsx workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ReportKey returns the object key for a local report: <prefix>/<YYYY-MM-DD>/<file name>.
func ReportKey(prefix, localPath string, now time.Time) string {
	name := filepath.Base(localPath)
	day := now.UTC().Format(time.DateOnly)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Join(day, name)
	}
	return path.Join(prefix, day, name)
}

// ContentType guesses the upload content type from the file extension.
func ContentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".xlsx":
		return XLSXContentType
	case ".txt", ".log":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// UploadReport uploads the file at localPath to bucket/key.
func UploadReport(ctx context.Context, client PutObjectAPI, bucket, key, localPath string) error {
	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("path", localPath).
		Msg("Uploading report to S3")

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to S3: %w", err)
	}

	log.Info().
		Str("bucket", bucket).
		Str("key", key).
		Msg("Report uploaded to S3")
	return nil
}

// Publisher uploads reports under a fixed bucket and prefix.
type Publisher struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Publish uploads localPath and returns the object key it was stored under.
func (p *Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	key := ReportKey(p.Prefix, localPath, now())
	if err := UploadReport(ctx, p.Client, p.Bucket, key, localPath); err != nil {
		return "", err
	}
	return key, nil
}
