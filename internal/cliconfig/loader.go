package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = ".codedashrc.yaml"
	// GlobalConfigDir is the directory under the user config dir.
	GlobalConfigDir = "codedash"
	// GlobalConfigFileName is the global config file name.
	GlobalConfigFileName = "config.yaml"
)

// FindLocalConfig returns the path of the local config file, or empty when
// none exists.
func FindLocalConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path := filepath.Join(cwd, LocalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// FindGlobalConfig returns the path of the global config file, or empty
// when none exists.
func FindGlobalConfig() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// LoadFile reads one YAML config file.
func LoadFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// SaveGlobal writes cfg as the global config file, creating the directory
// when needed.
func SaveGlobal(cfg *CLIConfig) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("cannot determine config directory: %w", err)
	}
	dir := filepath.Join(configDir, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, GlobalConfigFileName), data, 0o600)
}

// LoadAll resolves configuration from every layer except flags. An
// explicit path (flag or CODEDASH_CONFIG) replaces the local/global file
// search; a broken explicit file is an error, broken discovered files are
// skipped.
func LoadAll(explicitPath string) (*CLIConfig, error) {
	cfg := NewDefault()

	if explicitPath == "" {
		explicitPath = os.Getenv(EnvConfig)
	}
	if explicitPath != "" {
		fileCfg, err := LoadFile(explicitPath)
		if err != nil {
			return nil, err
		}
		Merge(cfg, fileCfg, SourceLocal)
		cfg.ConfigFile = explicitPath
		LoadEnv(cfg)
		return cfg, nil
	}

	if path := FindGlobalConfig(); path != "" {
		if fileCfg, err := LoadFile(path); err == nil {
			Merge(cfg, fileCfg, SourceGlobal)
		}
	}
	if path := FindLocalConfig(); path != "" {
		if fileCfg, err := LoadFile(path); err == nil {
			Merge(cfg, fileCfg, SourceLocal)
			cfg.ConfigFile = path
		}
	}

	LoadEnv(cfg)
	return cfg, nil
}
