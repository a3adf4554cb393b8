package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "podaci3.xlsx", cfg.Input)
	assert.Equal(t, []int{100}, cfg.Model.HiddenLayers)
	assert.Equal(t, 0.2, cfg.Split.TestSize)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Empty(t, cfg.Columns.Drop, "every non-target column is a feature")
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "salesclass.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"ID"}, cfg.Columns.Drop)
	assert.Equal(t, "mlp", cfg.Model.Kind)
	assert.Equal(t, []int{100}, cfg.Model.HiddenLayers)
	assert.Equal(t, "gini", cfg.Model.Tree.Criterion)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `
input: sales.csv
model:
  kind: forest
  hidden_layers: [32, 16]
  forest:
    n_estimators: 20
output:
  metrics_file: out.prom
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sales.csv", cfg.Input)
	assert.Equal(t, "forest", cfg.Model.Kind)
	assert.Equal(t, []int{32, 16}, cfg.Model.HiddenLayers)
	assert.Equal(t, 20, cfg.Model.Forest.NEstimators)
	assert.Equal(t, "OutletSales", cfg.Columns.Sales, "untouched keys keep their default")
	assert.Equal(t, 5, cfg.Model.KNN.K)
	assert.True(t, cfg.Output.Confusion)
}

func TestLoadErrors(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: read")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("model: [1, 2"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"test size", func(c *Config) { c.Split.TestSize = 1 }, "TestSize"},
		{"model kind", func(c *Config) { c.Model.Kind = "svm" }, "Kind"},
		{"empty layer", func(c *Config) { c.Model.HiddenLayers = []int{0} }, "HiddenLayers[0]"},
		{"no layers", func(c *Config) { c.Model.HiddenLayers = nil }, "HiddenLayers"},
		{"scaler", func(c *Config) { c.Scaler = "zscore" }, "Scaler"},
		{"label equals sales", func(c *Config) { c.Columns.Label = c.Columns.Sales }, "Label"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "Level"},
		{"knn k", func(c *Config) { c.Model.KNN.K = 0 }, "K"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
