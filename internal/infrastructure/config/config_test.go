package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.App.MaxBodyBytes)
	assert.Equal(t, "rugpull", cfg.NATS.SubjectPrefix)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectDelay)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultDetectorConfig(), cfg.Detector)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
app:
  http_port: 9000
  log_level: debug
nats:
  enabled: true
  subject_prefix: plugins.rugpull
detector:
  concentration_threshold_percent: 70
  balance_drop_threshold: "1000.5"
  extra_rules:
    - name: setMaxTxAmount(uint256)
      type: MAX_TX_LIMIT
      severity: MEDIUM
      description: Maximum transaction amount is being changed
      check:
        arg: amount
        index: 0
        op: lt
        threshold: "1000"
        token_units: true
    - name: enableTrading()
      type: TRADING_TOGGLE
      severity: LOW
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.HTTPPort)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "plugins.rugpull", cfg.NATS.SubjectPrefix)

	assert.Equal(t, int64(70), cfg.Detector.ConcentrationThresholdPercent)
	assert.Equal(t, "1000.5", cfg.Detector.BalanceDropThreshold)
	assert.Equal(t, "1000000", cfg.Detector.MintThreshold)
	assert.Equal(t, int32(18), cfg.Detector.TokenDecimals)

	require.Len(t, cfg.Detector.ExtraRules, 2)
	rule := cfg.Detector.ExtraRules[0]
	assert.Equal(t, "setMaxTxAmount(uint256)", rule.Name)
	require.NotNil(t, rule.Check)
	assert.Equal(t, "lt", rule.Check.Op)
	assert.Equal(t, "1000", rule.Check.Threshold)
	assert.True(t, rule.Check.TokenUnits)
	assert.Nil(t, cfg.Detector.ExtraRules[1].Check)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [unterminated"), 0o600))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestNATSURLFromEnv(t *testing.T) {
	t.Setenv("NATS_URL", "nats://nats.internal:4222")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "nats://nats.internal:4222", cfg.NATS.URL)
}
