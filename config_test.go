package aggregator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Default(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, DEFAULT_KECCAK_ROWS, cfg.Layout().RowsPerRound)
	require.Equal(t, 1<<LOG_DEGREE, cfg.NumRows())
	require.NotEmpty(t, cfg.SRSDir)

	capacity, ok := cfg.Capacity()
	require.True(t, ok)
	require.Equal(t, (1<<LOG_DEGREE)/(25*DEFAULT_KECCAK_ROWS)-2, capacity)
}

func TestConfig_Validate(t *testing.T) {
	invalid := map[string]func(*Config){
		"keccak rows":      func(c *Config) { c.KeccakRows = 7 },
		"zero log degree":  func(c *Config) { c.LogDegree = 0 },
		"huge log degree":  func(c *Config) { c.LogDegree = MAX_LOG_DEGREE + 1 },
		"accelerator name": func(c *Config) { c.Accelerator = "cuda" },
	}
	for name, mutate := range invalid {
		cfg := DefaultConfig()
		mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}

	cfg := DefaultConfig()
	cfg.KeccakRows = 25
	cfg.Accelerator = "icicle"
	require.NoError(t, cfg.Validate())
}
