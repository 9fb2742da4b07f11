package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SourceCSV, cfg.Source)
	assert.Equal(t, "autos.csv", cfg.CSVPath)
	assert.Equal(t, "abort", cfg.CoercionPolicy)
	assert.InDelta(t, 0.03, cfg.MinGroupFrequency, 1e-9)
	assert.Equal(t, 10, cfg.TopModels)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTOS_CSV_PATH", "/data/export.csv")
	t.Setenv("AUTOS_COERCION_POLICY", "skip")
	t.Setenv("AUTOS_MIN_GROUP_FREQUENCY", "0.05")
	t.Setenv("AUTOS_TOP_MODELS", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/data/export.csv", cfg.CSVPath)
	assert.Equal(t, "skip", cfg.CoercionPolicy)
	assert.InDelta(t, 0.05, cfg.MinGroupFrequency, 1e-9)
	assert.Equal(t, 25, cfg.TopModels)
}

func TestLoadConfigUnknownSource(t *testing.T) {
	t.Setenv("AUTOS_SOURCE", "mysql")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source kind")
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Source:            SourceCSV,
			CSVPath:           "autos.csv",
			CoercionPolicy:    "abort",
			MinGroupFrequency: 0.03,
			TopModels:         10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing csv path",
			mutate:  func(c *Config) { c.CSVPath = "" },
			wantErr: "CSV path",
		},
		{
			name:    "bad policy",
			mutate:  func(c *Config) { c.CoercionPolicy = "retry" },
			wantErr: "coercion policy",
		},
		{
			name:    "frequency above one",
			mutate:  func(c *Config) { c.MinGroupFrequency = 1.5 },
			wantErr: "frequency",
		},
		{
			name:    "zero top models",
			mutate:  func(c *Config) { c.TopModels = 0 },
			wantErr: "top models",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, model.FieldRegistrationYear, rules.Normalize.Rename["yearOfRegistration"])
	assert.Equal(t, model.FieldUnrepairedDamage, rules.Normalize.Rename["notRepairedDamage"])
	assert.Contains(t, rules.Normalize.Drop, "seller")
	assert.True(t, rules.Normalize.DropConstant)
	assert.Equal(t, "yes", rules.Normalize.Relabel[model.FieldUnrepairedDamage]["ja"])
	assert.Equal(t, "no", rules.Normalize.Relabel[model.FieldUnrepairedDamage]["nein"])

	require.Len(t, rules.Coerce, 2)
	assert.Equal(t, model.FieldOdometerKm, rules.Coerce[1].RenameTo)

	require.Len(t, rules.Filters, 2)
	price := rules.Filters[0]
	assert.Equal(t, int64(1), price.Min)
	assert.True(t, price.DetectMax)
	year := rules.Filters[1]
	assert.Equal(t, int64(1900), year.Min)
	assert.Equal(t, int64(2016), year.Max)
}

func TestDefaultRenameTableIsInjective(t *testing.T) {
	seen := make(map[string]string)
	for raw, canonical := range DefaultRules().Normalize.Rename {
		if prev, dup := seen[canonical]; dup {
			t.Fatalf("columns %q and %q both map to %q", prev, raw, canonical)
		}
		seen[canonical] = raw
	}
}

func TestLoadRules(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		rules, err := LoadRules("")
		require.NoError(t, err)
		assert.True(t, rules.Normalize.DropConstant)
	})

	t.Run("yaml file", func(t *testing.T) {
		content := `
normalize:
  rename:
    preis: price
  drop_constant: true
coerce:
  - column: price
    strip: ["$", ","]
filters:
  - column: price
    min: 1
    max: 100000
`
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := LoadRules(path)
		require.NoError(t, err)
		assert.Equal(t, "price", rules.Normalize.Rename["preis"])
		require.Len(t, rules.Filters, 1)
		assert.Equal(t, int64(100000), rules.Filters[0].Max)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))
		_, err := LoadRules(path)
		require.Error(t, err)
	})
}
