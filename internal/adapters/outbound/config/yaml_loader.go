package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medqc/stacaudit/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the per-directory configuration file.
const FileName = ".stacaudit.yaml"

// YAMLLoader reads .stacaudit.yaml and overlays STACAUDIT_* environment variables.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .stacaudit.yaml from dir. A missing file yields DefaultConfig;
// environment variables are applied in both cases.
func (l *YAMLLoader) Load(dir string) (domain.ClientConfig, error) {
	cfg, err := l.loadFile(dir)
	if err != nil {
		return domain.ClientConfig{}, err
	}

	cfg, err = applyEnv(cfg)
	if err != nil {
		return domain.ClientConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

func (l *YAMLLoader) loadFile(dir string) (domain.ClientConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ClientConfig{}, err
	}

	var cfg domain.ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before merging so typos in the raw file are reported.
	if err := cfg.Validate(); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit values on top of the defaults.
func mergeConfig(base, override domain.ClientConfig) domain.ClientConfig {
	result := override
	if result.APIBase == "" {
		result.APIBase = base.APIBase
	}
	if result.OutputDir == "" {
		result.OutputDir = base.OutputDir
	}
	return result
}

// Template is written by `stacaudit init`.
const Template = `# stacaudit configuration
# Environment variables (STACAUDIT_API_BASE, STACAUDIT_S3_BUCKET, ...) override these values.

# Address of the audit service.
api_base: %s

# Ask the service for a human-readable report instead of structured JSON.
human: false
# format: md

# Where downloaded artifacts are written.
output_dir: .

# Upper bound for one audit run, e.g. 2m. Empty means no deadline.
# timeout: 2m

# Upload artifacts to S3 instead of output_dir.
# s3:
#   bucket: audits
#   prefix: stac/
#   region: eu-west-1
#   endpoint: http://localhost:9000
`

// RenderTemplate returns the initial configuration file for apiBase.
func RenderTemplate(apiBase string) string {
	if apiBase == "" {
		apiBase = domain.DefaultAPIBase
	}
	return fmt.Sprintf(Template, apiBase)
}
