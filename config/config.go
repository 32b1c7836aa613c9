package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment overrides, applied after the YAML file.
const (
	EnvPort      = "GLUCORISK_PORT"
	EnvModelPath = "GLUCORISK_MODEL_PATH"
	EnvDBPath    = "GLUCORISK_DB_PATH"
	EnvLogLevel  = "GLUCORISK_LOG_LEVEL"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	ML struct {
		ModelType    string `yaml:"model_type"`
		ModelPath    string `yaml:"model_path"`
		MaxTreeDepth int    `yaml:"max_tree_depth"`
		Watch        bool   `yaml:"watch"`
		CacheSize    int    `yaml:"cache_size"`
	} `yaml:"ml"`
	Training struct {
		CSVPath   string  `yaml:"csv_path"`
		TestRatio float64 `yaml:"test_ratio"`
		Seed      int64   `yaml:"seed"`
	} `yaml:"training"`
}

func Default() *Config {
	var cfg Config
	cfg.Http.Port = 8080
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Http.MaxBodyBytes = 1 << 20
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	cfg.ML.ModelType = "decision_tree"
	cfg.ML.ModelPath = "models/diabetes_tree.json"
	cfg.ML.MaxTreeDepth = 5
	cfg.ML.CacheSize = 256
	cfg.Training.TestRatio = 0.2
	cfg.Training.Seed = 42
	return &cfg
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides (a .env file in the working directory is honoured).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.ML.ModelPath = v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	if c.ML.MaxTreeDepth <= 0 {
		return errors.New("ml.max_tree_depth must be positive")
	}
	if c.ML.CacheSize < 0 {
		return errors.New("ml.cache_size must not be negative")
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio %v must be between 0 and 1", c.Training.TestRatio)
	}
	return nil
}
