// Package config loads the environment configuration shared by the trace
// report tools. Every field has a default, so the tools run unconfigured on
// the benchmark host they were written for.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/fpang/trace-report-tools/internal/source"
)

// Config holds all tool configuration.
type Config struct {
	Logging LogConfig
	Pueue   PueueConfig
	Report  ReportConfig
	Upload  UploadConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `envconfig:"TRACETOOLS_LOG_LEVEL" default:"info"`
}

// PueueConfig locates the pueue daemon state and its per-task logs.
type PueueConfig struct {
	StatePath string `envconfig:"PUEUE_STATE_PATH" default:"/root/.local/share/pueue/state.json"`
	LogsDir   string `envconfig:"PUEUE_LOGS_DIR" default:"/root/.local/share/pueue/task_logs"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	RotationsXLSX string `envconfig:"LSM_ROTATIONS_XLSX" default:"/root/lsm_fifo_counts.xlsx"`
	LabelMarker   string `envconfig:"LSM_LABEL_MARKER" default:"lsm"`
	// Encoding is "utf-8", "auto" (detect) or an explicit charset label.
	Encoding string `envconfig:"TRACETOOLS_ENCODING" default:"utf-8"`
}

// UploadConfig enables copying finished workbooks to S3. An empty bucket
// disables the upload.
type UploadConfig struct {
	Bucket string `envconfig:"TRACETOOLS_S3_BUCKET"`
	Prefix string `envconfig:"TRACETOOLS_S3_PREFIX" default:"reports"`
}

// Enabled reports whether an upload destination is configured.
func (u UploadConfig) Enabled() bool {
	return u.Bucket != ""
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := source.CheckEncoding(cfg.Report.Encoding); err != nil {
		return nil, fmt.Errorf("invalid TRACETOOLS_ENCODING: %w", err)
	}
	return &cfg, nil
}
