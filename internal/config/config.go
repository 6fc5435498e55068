package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Organization       string `toml:"organization"`
	ResultsDir         string `toml:"results_dir"`
	ConfigsDir         string `toml:"configs_dir"`
	LogsDir            string `toml:"logs_dir"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

func DefaultConfig() *Config {
	return &Config{
		ResultsDir:         "results",
		ConfigsDir:         "configs",
		LogsDir:            "logs",
		HTTPTimeoutSeconds: 30,
	}
}

func AppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".devops-trace"), nil
}

func ConfigPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "devops-trace.sqlite"), nil
}

func EnsureDirectories() error {
	dir, err := AppDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Load existing config
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	cfg.ResultsDir = expandPath(cfg.ResultsDir)
	cfg.ConfigsDir = expandPath(cfg.ConfigsDir)
	cfg.LogsDir = expandPath(cfg.LogsDir)

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
