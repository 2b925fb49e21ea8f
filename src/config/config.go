package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const envConfigPath = "PHARMA_CHAIN_CONFIG"

// SensorConfig bounds the simulated readings, inclusive.
type SensorConfig struct {
	TempMinC    int    `toml:"temp_min_c"`
	TempMaxC    int    `toml:"temp_max_c"`
	HumidityMin int    `toml:"humidity_min"`
	HumidityMax int    `toml:"humidity_max"`
	Seed        uint64 `toml:"seed"` // 0 picks a random seed
}

// ValidationConfig selects how the tracker re-checks the chain.
type ValidationConfig struct {
	Incremental bool `toml:"incremental"` // check only blocks added since the last valid result
}

// ExportConfig controls where snapshots and reports are written.
type ExportConfig struct {
	Directory string `toml:"directory"`
}

// Config is the runtime configuration of the shipment ledger.
type Config struct {
	Sensor     SensorConfig     `toml:"sensor"`
	Validation ValidationConfig `toml:"validation"`
	Export     ExportConfig     `toml:"export"`
}

// Default returns the cold-chain defaults: 2-8°C, 30-50% humidity, full
// validation, exports under ./local/export.
func Default() Config {
	return Config{
		Sensor: SensorConfig{
			TempMinC:    2,
			TempMaxC:    8,
			HumidityMin: 30,
			HumidityMax: 50,
		},
		Validation: ValidationConfig{Incremental: false},
		Export:     ExportConfig{Directory: "./local/export"},
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Sensor.TempMinC > c.Sensor.TempMaxC {
		return fmt.Errorf("sensor: temp_min_c %d > temp_max_c %d", c.Sensor.TempMinC, c.Sensor.TempMaxC)
	}
	if c.Sensor.HumidityMin > c.Sensor.HumidityMax {
		return fmt.Errorf("sensor: humidity_min %d > humidity_max %d", c.Sensor.HumidityMin, c.Sensor.HumidityMax)
	}
	if c.Sensor.HumidityMin < 0 || c.Sensor.HumidityMax > 100 {
		return fmt.Errorf("sensor: humidity range [%d, %d] outside 0-100", c.Sensor.HumidityMin, c.Sensor.HumidityMax)
	}
	if strings.TrimSpace(c.Export.Directory) == "" {
		return errors.New("export: directory is empty")
	}
	return nil
}

// Load reads a TOML file over the defaults. Keys the file sets replace the
// default; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the first config found in $PHARMA_CHAIN_CONFIG,
// ./pharma_chain.toml or ./local/pharma_chain.toml. It returns the defaults
// and an empty path when none exists.
func Discover() (Config, string, error) {
	candidates := []string{
		"./pharma_chain.toml",
		"./local/pharma_chain.toml",
	}
	if path := os.Getenv(envConfigPath); path != "" {
		candidates = append([]string{path}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		return cfg, path, err
	}
	return Default(), "", nil
}
