package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danyQe/codedash/internal/cliconfig"
)

// BuildInfo carries version details set at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

// rootFlagVals is the package-level instance bound to persistent flags.
var rootFlagVals struct {
	configFile string
	serverURL  string
	assetURL   string
	dataDir    string
	logLevel   string
	logFormat  string
	profile    string
	inMemory   bool
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "codedash",
	Short: "Dashboard client runtime for the codebase control plane",
	Long: `codedash runs the developer dashboard runtime: an instrumented API
client, call-log telemetry, reactive state and section navigation for a
codebase-assistant control plane.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlagVals.configFile, "config", "c", "", "Path to a config file (default: .codedashrc.yaml, then the global config)")
	pf.StringVarP(&rootFlagVals.serverURL, "server-url", "s", "", "Control-plane base URL")
	pf.StringVar(&rootFlagVals.assetURL, "asset-url", "", "Fragment asset base URL (default: server URL)")
	pf.StringVar(&rootFlagVals.dataDir, "data-dir", "", "Directory for persisted history and preferences")
	pf.StringVar(&rootFlagVals.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlagVals.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&rootFlagVals.profile, "profile", "", "Named control-plane profile from the config file")
	pf.BoolVar(&rootFlagVals.inMemory, "in-memory", false, "Disable persistence; keep everything in memory")
	pf.BoolVar(&rootFlagVals.verbose, "verbose", false, "Report where each configuration value came from")

	initRunCmd()
	initExportCmd()
	initStatsCmd()
	initConfigCmd()
	initVersionCmd()
}

// Execute runs the CLI.
func Execute(info BuildInfo) error {
	if info.Version != "" {
		buildInfo = info
	}
	return rootCmd.Execute()
}

// resolveConfig layers config files, environment and flags.
func resolveConfig() (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(rootFlagVals.configFile)
	if err != nil {
		return nil, err
	}

	cliconfig.Merge(cfg, &cliconfig.CLIConfig{
		ServerURL: rootFlagVals.serverURL,
		AssetURL:  rootFlagVals.assetURL,
		DataDir:   rootFlagVals.dataDir,
		LogLevel:  rootFlagVals.logLevel,
		LogFormat: rootFlagVals.logFormat,
		Verbose:   rootFlagVals.verbose,
	}, cliconfig.SourceFlag)

	cfg.ApplyProfile(rootFlagVals.profile)

	if cfg.Verbose {
		reportSources(cfg)
	}
	return cfg, nil
}

func reportSources(cfg *cliconfig.CLIConfig) {
	fmt.Printf("serverUrl  = %s (%s)\n", cfg.ServerURL, cfg.Sources["serverUrl"])
	if cfg.AssetURL != "" {
		fmt.Printf("assetUrl   = %s (%s)\n", cfg.AssetURL, cfg.Sources["assetUrl"])
	}
	if cfg.DataDir != "" {
		fmt.Printf("dataDir    = %s (%s)\n", cfg.DataDir, cfg.Sources["dataDir"])
	}
	fmt.Printf("logLevel   = %s (%s)\n", cfg.LogLevel, cfg.Sources["logLevel"])
	fmt.Printf("logFormat  = %s (%s)\n", cfg.LogFormat, cfg.Sources["logFormat"])
	fmt.Printf("historyCap = %d (%s)\n", cfg.HistoryCap, cfg.Sources["historyCap"])
}
