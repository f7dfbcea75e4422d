package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Address   string  `yaml:"address"`
		RateLimit float64 `yaml:"rate_limit"` // requests per second per client
		RateBurst int     `yaml:"rate_burst"`
	} `yaml:"server"`
	Data struct {
		CSVPath string `yaml:"csv_path"`
		Asset   string `yaml:"asset"`
	} `yaml:"data"`
	Resources struct {
		History         int `yaml:"history"` // samples kept for /api/resources
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"resources"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		MaxAge int    `yaml:"max_age"` // days, for file outputs
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error;
// the defaults describe a runnable setup.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.Data.CSVPath = v
	}
	if v := os.Getenv("ASSET_NAME"); v != "" {
		cfg.Data.Asset = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 10
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}
	if cfg.Data.CSVPath == "" {
		cfg.Data.CSVPath = "data/eth_1d_data_2017_to_2025.csv"
	}
	if cfg.Data.Asset == "" {
		cfg.Data.Asset = "Ethereum"
	}
	if cfg.Resources.History == 0 {
		cfg.Resources.History = 120
	}
	if cfg.Resources.IntervalSeconds == 0 {
		cfg.Resources.IntervalSeconds = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 7
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	if c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_burst must be positive")
	}
	if c.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path is required")
	}
	if c.Resources.History <= 0 {
		return fmt.Errorf("resources.history must be positive")
	}
	if c.Resources.IntervalSeconds <= 0 {
		return fmt.Errorf("resources.interval_seconds must be positive")
	}
	return nil
}
