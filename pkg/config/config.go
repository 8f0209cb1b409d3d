// Package config loads heapdb settings from YAML.
package config

import (
	"os"

	"heapdb/pkg/logging"
	"heapdb/pkg/memory"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	DataDir    string         `yaml:"data_dir" validate:"required"`
	BufferPool BufferPool     `yaml:"buffer_pool"`
	Statistics Statistics     `yaml:"statistics"`
	Logging    logging.Config `yaml:"logging"`
}

// BufferPool sizes the page cache and picks its replacement policy.
type BufferPool struct {
	MaxPages int    `yaml:"max_pages" validate:"gte=1"`
	Policy   string `yaml:"policy" validate:"oneof=random lru"`
}

// Statistics tunes table statistics collection.
type Statistics struct {
	HistogramBins int `yaml:"histogram_bins" validate:"gte=1"`
	IOCostPerPage int `yaml:"io_cost_per_page" validate:"gte=0"`
	// Parallelism bounds how many tables are scanned at once during recompute.
	Parallelism int `yaml:"parallelism" validate:"gte=1"`
}

// Default returns a configuration usable without a file.
func Default() *Config {
	return &Config{
		DataDir: "data",
		BufferPool: BufferPool{
			MaxPages: memory.DefaultCapacity,
			Policy:   memory.PolicyRandom,
		},
		Statistics: Statistics{
			HistogramBins: 100,
			IOCostPerPage: 1000,
			Parallelism:   4,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads path over the defaults, so omitted keys keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
