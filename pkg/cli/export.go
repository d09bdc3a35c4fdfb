package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danyQe/codedash/pkg/store"
	"github.com/danyQe/codedash/pkg/telemetry"
)

var exportFlagVals struct {
	output string
	format string
	route  string
	method string
	status string
	search string
	where  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted call log",
	Long: `Export the persisted call history together with aggregate statistics.
JSON output carries the full sanitized entries; CSV carries one line per
call. Filters narrow the exported history.`,
	Example: `  # Dump the full call log as JSON
  codedash export

  # CSV of failed calls, written to a file
  codedash export --format csv --status error -o failures.csv

  # Expression filter over the history
  codedash export --where 'durationMs > 250 && route == "/search"'`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		return runExport(cfg.DataDir, cfg.HistoryCap)
	},
}

func initExportCmd() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVarP(&exportFlagVals.output, "output", "o", "", "Write to a file instead of stdout")
	f.StringVarP(&exportFlagVals.format, "format", "f", "json", "Export format (json, csv)")
	f.StringVar(&exportFlagVals.route, "route", "", "Only entries for this route")
	f.StringVar(&exportFlagVals.method, "method", "", "Only entries with this HTTP method")
	f.StringVar(&exportFlagVals.status, "status", "", "Only entries with this status (success, error)")
	f.StringVar(&exportFlagVals.search, "search", "", "Case-insensitive substring match")
	f.StringVar(&exportFlagVals.where, "where", "", "Expression filter, e.g. 'durationMs > 100'")
}

func runExport(dataDir string, historyCap int) error {
	engine, closeStore, err := openTelemetry(dataDir, historyCap)
	if err != nil {
		return err
	}
	defer closeStore()

	filter := &telemetry.Filter{
		Route:  exportFlagVals.route,
		Method: exportFlagVals.method,
		Status: telemetry.Status(exportFlagVals.status),
		Search: exportFlagVals.search,
		Where:  exportFlagVals.where,
	}

	var data []byte
	switch exportFlagVals.format {
	case "json":
		data, err = engine.Export(filter)
	case "csv":
		data, err = engine.ExportCSV(filter)
	default:
		return fmt.Errorf("unknown export format: %s", exportFlagVals.format)
	}
	if err != nil {
		return err
	}

	if exportFlagVals.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(exportFlagVals.output, data, 0o644)
}

// openTelemetry loads the persisted call log without assembling the full
// runtime.
func openTelemetry(dataDir string, historyCap int) (*telemetry.Engine, func(), error) {
	kv, err := store.NewFileStore(store.Config{DataDir: dataDir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	engine := telemetry.New(telemetry.Config{
		HistoryCap: historyCap,
		Store:      kv,
	})
	engine.LoadHistory()
	return engine, func() { _ = kv.Close() }, nil
}
