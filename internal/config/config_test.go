package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"CONFIG_FILE", "PORT", "DATA_PATH", "DATABASE_URL", "JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	"ALLOCATION_POLICY", "MAX_MULTIPLIER", "DEFAULT_ITEM_LABEL", "CURRENCY_LOCALE", "CURRENCY_SYMBOL",
}

// clearEnv unsets every key Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/warikan.db", cfg.DataPath)
	assert.Equal(t, "INCLUSIVE", cfg.Allocation.Policy)
	assert.Equal(t, 5.0, cfg.Allocation.MaxMultiplier)
	assert.Equal(t, "追加金額", cfg.Allocation.DefaultItemLabel)
	assert.Equal(t, "ja", cfg.Currency.Locale)
	assert.Equal(t, "¥", cfg.Currency.Symbol)
	assert.False(t, cfg.RemoteEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
database_url: ${TEST_WARIKAN_DSN}
log:
  level: debug
  format: json
allocation:
  policy: REMAINDER
  max_multiplier: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TEST_WARIKAN_DSN", "postgres://localhost/warikan")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "environment wins over the file")
	assert.Equal(t, "postgres://localhost/warikan", cfg.DatabaseURL)
	assert.True(t, cfg.RemoteEnabled())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "REMAINDER", cfg.Allocation.Policy)
	assert.Equal(t, 3.0, cfg.Allocation.MaxMultiplier)
	assert.Equal(t, "ja", cfg.Currency.Locale, "unset file keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/warikan.yaml"}},
		{"bad multiplier", map[string]string{"MAX_MULTIPLIER": "lots"}},
		{"negative multiplier", map[string]string{"MAX_MULTIPLIER": "-1"}},
		{"unknown policy", map[string]string{"ALLOCATION_POLICY": "ROUND_ROBIN"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
