package domain_test

import (
	"testing"
	"time"

	"github.com/medqc/stacaudit/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, domain.DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.False(t, cfg.Human)
	assert.Zero(t, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.ClientConfig
		wantErr string
	}{
		{"empty is valid", domain.ClientConfig{}, ""},
		{"https base", domain.ClientConfig{APIBase: "https://audit.example.com"}, ""},
		{"bad scheme", domain.ClientConfig{APIBase: "ftp://audit"}, "must use http or https"},
		{"no host", domain.ClientConfig{APIBase: "http://"}, "has no host"},
		{"negative timeout", domain.ClientConfig{Timeout: -time.Second}, "timeout must not be negative"},
		{"prefix without bucket", domain.ClientConfig{S3: domain.S3Config{Prefix: "runs/"}}, "s3.bucket is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIsKnownFormat(t *testing.T) {
	assert.True(t, domain.IsKnownFormat("md"))
	assert.False(t, domain.IsKnownFormat("docx"))
}
