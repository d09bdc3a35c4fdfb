package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvServerURL  = "CODEDASH_SERVER_URL"
	EnvAssetURL   = "CODEDASH_ASSET_URL"
	EnvDataDir    = "CODEDASH_DATA_DIR"
	EnvLogLevel   = "CODEDASH_LOG_LEVEL"
	EnvLogFormat  = "CODEDASH_LOG_FORMAT"
	EnvHistoryCap = "CODEDASH_HISTORY_CAP"
	EnvProfile    = "CODEDASH_PROFILE"
	EnvConfig     = "CODEDASH_CONFIG"
	EnvVerbose    = "CODEDASH_VERBOSE"
)

// LoadEnv overlays environment variables onto cfg. Only variables present
// in the environment take effect.
func LoadEnv(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
		cfg.Sources["serverUrl"] = SourceEnv
	}
	if v := os.Getenv(EnvAssetURL); v != "" {
		cfg.AssetURL = v
		cfg.Sources["assetUrl"] = SourceEnv
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
		cfg.Sources["dataDir"] = SourceEnv
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}
	if v := os.Getenv(EnvHistoryCap); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryCap = n
			cfg.Sources["historyCap"] = SourceEnv
		}
	}
	if v := os.Getenv(EnvProfile); v != "" {
		cfg.CurrentProfile = v
		cfg.Sources["currentProfile"] = SourceEnv
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
		cfg.Sources["verbose"] = SourceEnv
	}
}
