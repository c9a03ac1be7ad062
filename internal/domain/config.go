package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultAPIBase is the audit service address used when none is configured.
const DefaultAPIBase = "http://localhost:8000"

// KnownFormats lists the human-mode output formats offered by the clients.
// The service defines the set; other values are passed through unchanged.
var KnownFormats = []string{"md", "json", "text"}

// ClientConfig holds client configuration loaded from .stacaudit.yaml and the
// environment.
type ClientConfig struct {
	APIBase   string        `yaml:"api_base"   json:"api_base"`
	Human     bool          `yaml:"human"      json:"human"`
	Format    string        `yaml:"format"     json:"format,omitempty"`
	OutputDir string        `yaml:"output_dir" json:"output_dir"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout,omitempty"`
	Trace     bool          `yaml:"trace"      json:"trace,omitempty"`
	S3        S3Config      `yaml:"s3"         json:"s3,omitempty"`
}

// S3Config selects an S3 bucket as the artifact destination.
type S3Config struct {
	Bucket   string `yaml:"bucket"   json:"bucket,omitempty"`
	Prefix   string `yaml:"prefix"   json:"prefix,omitempty"`
	Region   string `yaml:"region"   json:"region,omitempty"`
	Endpoint string `yaml:"endpoint" json:"endpoint,omitempty"`
}

// Enabled reports whether artifacts should be uploaded to S3.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		APIBase:   DefaultAPIBase,
		OutputDir: ".",
	}
}

// Validate checks user-supplied values before they are merged with defaults.
func (c ClientConfig) Validate() error {
	if c.APIBase != "" {
		u, err := url.Parse(c.APIBase)
		if err != nil {
			return fmt.Errorf("invalid api_base %q: %w", c.APIBase, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api_base %q must use http or https", c.APIBase)
		}
		if u.Host == "" {
			return fmt.Errorf("api_base %q has no host", c.APIBase)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.S3.Prefix != "" && c.S3.Bucket == "" {
		return fmt.Errorf("s3.prefix is set but s3.bucket is empty")
	}
	return nil
}

// IsKnownFormat reports whether f is one of KnownFormats.
func IsKnownFormat(f string) bool {
	for _, k := range KnownFormats {
		if k == f {
			return true
		}
	}
	return false
}
