package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

const defaultPrefix = "datasets"

// Config holds the S3 archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
	Enabled         bool
}

// LoadConfig loads the archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          strings.Trim(env.GetEnv("S3_PREFIX", defaultPrefix), "/"),
		Enabled:         env.GetEnvBool("S3_ARCHIVE_ENABLED", false),
	}
	if config.Prefix == "" {
		config.Prefix = defaultPrefix
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the S3 archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the S3 archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the S3 archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if archiving to S3 is switched on
func (c *Config) IsEnabled() bool {
	return c != nil && c.Enabled
}

// ObjectKey returns the key of an archived dataset: <prefix>/YYYY/MM/<uuid>.csv
func (c *Config) ObjectKey(datasetUUID string, uploadedAt time.Time) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return fmt.Sprintf("%s/%04d/%02d/%s.csv", prefix, uploadedAt.Year(), int(uploadedAt.Month()), datasetUUID)
}
