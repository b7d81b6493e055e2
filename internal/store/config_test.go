package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "mode: paper\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxAutoBuyQty != 10 {
		t.Fatalf("MaxAutoBuyQty = %d, want 10", cfg.MaxAutoBuyQty)
	}
	if cfg.RequestTimeoutSeconds != 10 {
		t.Fatalf("RequestTimeoutSeconds = %d, want 10", cfg.RequestTimeoutSeconds)
	}
	if cfg.LogRetentionDays != 7 {
		t.Fatalf("LogRetentionDays = %d, want 7", cfg.LogRetentionDays)
	}
	if cfg.Monitor.StopLossPct != -5.0 || cfg.Monitor.TakeProfitPct != 10.0 {
		t.Fatalf("monitor thresholds = %+v", cfg.Monitor)
	}
	if cfg.Monitor.IntervalSeconds != 60 || cfg.Monitor.AutoExecute {
		t.Fatalf("monitor = %+v", cfg.Monitor)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: live
max_auto_buy_qty: 25
monitor:
  stop_loss_pct: -3.5
  take_profit_pct: 7
  interval_seconds: 30
  max_iterations: 100
  auto_execute: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "live" || cfg.MaxAutoBuyQty != 25 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Monitor.StopLossPct != -3.5 || cfg.Monitor.MaxIterations != 100 || !cfg.Monitor.AutoExecute {
		t.Fatalf("monitor = %+v", cfg.Monitor)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad mode", "mode: sandbox\n"},
		{"positive stop loss", "mode: paper\nmonitor:\n  stop_loss_pct: 5\n"},
		{"negative take profit", "mode: paper\nmonitor:\n  take_profit_pct: -10\n"},
		{"negative iterations", "mode: paper\nmonitor:\n  max_iterations: -1\n"},
		{"negative buy ceiling", "mode: paper\nmax_auto_buy_qty: -2\n"},
		{"negative retention", "mode: paper\nlog_retention_days: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLoadOrDefaultWithMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "paper" {
		t.Fatalf("mode = %q, want paper default", cfg.Mode)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
