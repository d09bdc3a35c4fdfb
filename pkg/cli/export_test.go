package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danyQe/codedash/pkg/store"
	"github.com/danyQe/codedash/pkg/telemetry"
)

func seedHistory(t *testing.T, dataDir string) {
	t.Helper()
	kv, err := store.NewFileStore(store.Config{DataDir: dataDir})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = kv.Close() }()

	engine := telemetry.New(telemetry.Config{Store: kv})
	engine.Log(telemetry.Call{Route: "/health", Method: "GET", DurationMs: 12, Status: telemetry.StatusSuccess, StatusCode: 200})
	engine.Log(telemetry.Call{Route: "/search", Method: "POST", DurationMs: 340, Status: telemetry.StatusError, StatusCode: 500, ErrorMessage: "index unavailable"})
}

func resetExportFlags() {
	exportFlagVals.output = ""
	exportFlagVals.format = "json"
	exportFlagVals.route = ""
	exportFlagVals.method = ""
	exportFlagVals.status = ""
	exportFlagVals.search = ""
	exportFlagVals.where = ""
}

func TestRunExport_JSON(t *testing.T) {
	dataDir := t.TempDir()
	seedHistory(t, dataDir)

	resetExportFlags()
	out := filepath.Join(t.TempDir(), "export.json")
	exportFlagVals.output = out

	if err := runExport(dataDir, 0); err != nil {
		t.Fatalf("runExport: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		ExportDate string `json:"exportDate"`
		History    []struct {
			Route  string `json:"route"`
			Status string `json:"status"`
		} `json:"history"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(payload.History) != 2 {
		t.Fatalf("history length = %d", len(payload.History))
	}
	if payload.ExportDate == "" {
		t.Error("missing exportDate")
	}
}

func TestRunExport_CSVWithStatusFilter(t *testing.T) {
	dataDir := t.TempDir()
	seedHistory(t, dataDir)

	resetExportFlags()
	out := filepath.Join(t.TempDir(), "export.csv")
	exportFlagVals.output = out
	exportFlagVals.format = "csv"
	exportFlagVals.status = "error"

	if err := runExport(dataDir, 0); err != nil {
		t.Fatalf("runExport: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "/search") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestRunExport_UnknownFormat(t *testing.T) {
	resetExportFlags()
	exportFlagVals.format = "xml"

	if err := runExport(t.TempDir(), 0); err == nil {
		t.Error("expected error for unknown format")
	}
}
