// Package walletconfig loads the wallet CLI's configuration file: fee
// rates, default derivation paths, and logging options.
package walletconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nockwallet/rose/internal/werr"
)

// Config is the unified configuration for the wallet CLI.
type Config struct {
	Derivation struct {
		DefaultAccountIndex uint32 `yaml:"default_account_index"`
	} `yaml:"derivation"`

	Fees struct {
		PerWord uint64 `yaml:"per_word"`
	} `yaml:"fees"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	var c Config
	c.Derivation.DefaultAccountIndex = 0
	c.Fees.PerWord = 1 << 15
	c.Logging.Level = "info"
	return c
}

// Load reads a YAML configuration file from path, falling back to
// Default for any field it does not set.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, werr.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, werr.Wrap(err, "parse config")
	}
	return c, nil
}
