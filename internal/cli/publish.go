package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/trace-report-tools/internal/config"
	"github.com/fpang/trace-report-tools/internal/s3util"
)

// PublishReport uploads the report at path when an upload bucket is
// configured and returns the object key. It returns "" when uploads are
// disabled.
func PublishReport(ctx context.Context, cfg config.UploadConfig, path string) (string, error) {
	if !cfg.Enabled() {
		log.Debug().Msg("S3 upload disabled")
		return "", nil
	}

	client, err := s3util.NewClient(ctx)
	if err != nil {
		return "", err
	}
	p := &s3util.Publisher{Client: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}
	return p.Publish(ctx, path)
}
