// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package bootcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "/var/lib/polyd", cfg.Store.Dir)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
store:
  dir: /tmp/polyd-store
listen:
  bgp: "0.0.0.0:1790"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/polyd-store", cfg.Store.Dir)
	require.Equal(t, "0.0.0.0:1790", cfg.Listen.BGP)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsMissingStoreDir(t *testing.T) {
	cfg := Default()
	cfg.Store.Dir = ""
	err := Validate(cfg)
	require.Error(t, err)
}

func TestZapLevelParsesConfiguredLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	lvl, err := cfg.Logging.ZapLevel()
	require.NoError(t, err)
	require.Equal(t, "warn", lvl.String())
}
