package config

import (
	"os"
	"strconv"

	"etasim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Sim      SimConfig
	Database DatabaseConfig
	Paths    PathConfig
}

// SimConfig holds simulation settings
type SimConfig struct {
	NumSim   int
	BaseSeed uint64
	Verbose  bool
}

// DatabaseConfig holds optional forecast archive settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// PathConfig holds file system paths
type PathConfig struct {
	ExcelFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Sim: SimConfig{
			NumSim:   1000,
			BaseSeed: 0,
		},
	}

	if v := os.Getenv("ETASIM_NUM_SIM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			return nil, errors.ConfigInvalid("ETASIM_NUM_SIM must be an integer >= 2")
		}
		cfg.Sim.NumSim = n
	}

	if v := os.Getenv("ETASIM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("ETASIM_SEED must be a 64-bit unsigned integer")
		}
		cfg.Sim.BaseSeed = seed
	}

	if v := os.Getenv("ETASIM_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.ConfigInvalid("ETASIM_VERBOSE must be a boolean")
		}
		cfg.Sim.Verbose = b
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
		cfg.Database.Enabled = true
	}

	cfg.Paths.ExcelFile = os.Getenv("ETASIM_EXCEL_FILE")

	return cfg, nil
}
