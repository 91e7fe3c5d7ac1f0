package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.ScanWorkers)
	assert.Equal(t, 100000, cfg.MaxFiles)
	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 5*time.Minute, cfg.StaleAfter)
	assert.Equal(t, 60, cfg.DefaultThreshold)
	assert.Equal(t, 100, cfg.ResultLimit)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPServer)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 50, cfg.MaxAttachmentMB)
	assert.Equal(t, "ebook-convert", cfg.CalibreBinary)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOOKSCOUT_LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("BOOKSCOUT_SCAN_WORKERS", "16")
	t.Setenv("BOOKSCOUT_SCAN_TIMEOUT", "2m")
	t.Setenv("BOOKSCOUT_THRESHOLD", "75")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, 16, cfg.ScanWorkers)
	assert.Equal(t, 2*time.Minute, cfg.ScanTimeout)
	assert.Equal(t, 75, cfg.DefaultThreshold)
}

func TestLoadThresholdZeroIsRespected(t *testing.T) {
	t.Setenv("BOOKSCOUT_THRESHOLD", "0")
	assert.Equal(t, 0, Load().DefaultThreshold)
}

func TestLoadThresholdOutOfRangeFallsBack(t *testing.T) {
	for _, raw := range []string{"-3", "101", "150"} {
		t.Setenv("BOOKSCOUT_THRESHOLD", raw)
		assert.Equal(t, 60, Load().DefaultThreshold, "threshold %q", raw)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("BOOKSCOUT_SCAN_WORKERS", "many")
	t.Setenv("BOOKSCOUT_SCAN_TIMEOUT", "soonish")

	cfg := Load()
	assert.Equal(t, 4, cfg.ScanWorkers)
	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
}

func TestConfiguredPredicates(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.IsGmailConfigured())
	assert.False(t, cfg.IsKindleConfigured())
	assert.False(t, cfg.IsFullyConfigured())

	cfg.GmailAddress = "me@gmail.com"
	cfg.GmailAppPassword = "app-password"
	assert.True(t, cfg.IsGmailConfigured())
	assert.False(t, cfg.IsFullyConfigured())

	cfg.KindleEmail = "me_kindle@kindle.com"
	assert.True(t, cfg.IsKindleConfigured())
	assert.True(t, cfg.IsFullyConfigured())
}

func TestSummaryOmitsSecrets(t *testing.T) {
	cfg := Load()
	cfg.GmailAppPassword = "super-secret"

	summary := cfg.Summary()
	for _, v := range summary {
		assert.NotEqual(t, "super-secret", v)
	}
	assert.Contains(t, summary, "gmail_configured")
	assert.Contains(t, summary, "smtp_server")
}
