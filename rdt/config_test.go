package rdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/corpus"
	cfg.IndexName = "idx"
	cfg.OutFile = "/tmp/out.rdt"
	return cfg
}

func TestConfigValidateAccepsDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRequiresPaths(t *testing.T) {
	cfg := validConfig()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsSingleThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.NThresholds = 1
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsExcessiveDepth(t *testing.T) {
	cfg := validConfig()
	cfg.MaxDepth = maxSafeDepth + 1
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateClampsThreads(t *testing.T) {
	cfg := validConfig()
	cfg.NThreads = 0
	require.NoError(t, cfg.Validate())
	assert.Greater(t, cfg.NThreads, 0)

	cfg.NThreads = 999
	require.NoError(t, cfg.Validate())
	assert.LessOrEqual(t, cfg.NThreads, 128)
}
