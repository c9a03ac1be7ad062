package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/medqc/stacaudit/internal/domain"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "STACAUDIT_"

// envKey maps STACAUDIT_API_BASE to api_base and STACAUDIT_S3_BUCKET to s3.bucket.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if strings.HasPrefix(key, "s3_") {
		key = "s3." + strings.TrimPrefix(key, "s3_")
	}
	return key
}

// applyEnv overlays STACAUDIT_* variables onto cfg.
func applyEnv(cfg domain.ClientConfig) (domain.ClientConfig, error) {
	k := koanf.New(".")
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		return envKey(key), value
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading environment: %w", err)
	}

	return overlay(cfg, k)
}

func overlay(cfg domain.ClientConfig, k *koanf.Koanf) (domain.ClientConfig, error) {
	strs := map[string]*string{
		"api_base":    &cfg.APIBase,
		"format":      &cfg.Format,
		"output_dir":  &cfg.OutputDir,
		"s3.bucket":   &cfg.S3.Bucket,
		"s3.prefix":   &cfg.S3.Prefix,
		"s3.region":   &cfg.S3.Region,
		"s3.endpoint": &cfg.S3.Endpoint,
	}
	for key, dst := range strs {
		if k.Exists(key) {
			*dst = k.String(key)
		}
	}

	bools := map[string]*bool{
		"human": &cfg.Human,
		"trace": &cfg.Trace,
	}
	for key, dst := range bools {
		if !k.Exists(key) {
			continue
		}
		b, err := strconv.ParseBool(k.String(key))
		if err != nil {
			return cfg, fmt.Errorf("parsing %s%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), err)
		}
		*dst = b
	}

	if k.Exists("timeout") {
		d, err := time.ParseDuration(k.String("timeout"))
		if err != nil {
			return cfg, fmt.Errorf("parsing %sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
