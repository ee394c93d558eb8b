package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cost.BaseFeeUSD != 5.00 {
		t.Errorf("expected default base fee 5.00, got %v", cfg.Cost.BaseFeeUSD)
	}
	if cfg.Cost.FloorMinutes != 5.0 {
		t.Errorf("expected default floor 5.0, got %v", cfg.Cost.FloorMinutes)
	}
	if cfg.Vault.Iterations != 100000 {
		t.Errorf("expected 100000 iterations, got %d", cfg.Vault.Iterations)
	}
	if len(cfg.Analysis.StaticExtensions) == 0 {
		t.Error("expected non-empty static extension set")
	}
	if cfg.Connect.TokenURL == "" || cfg.Connect.APIURL == "" {
		t.Error("expected connect URLs to default")
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
cost:
  base_fee_usd: 2.5
  per_entry_rate_usd: 0.01
analysis:
  static_extensions: ["js"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cost.BaseFeeUSD != 2.5 {
		t.Errorf("file override lost, base fee = %v", cfg.Cost.BaseFeeUSD)
	}
	if cfg.Cost.FloorMinutes != 5.0 {
		t.Errorf("unset key should keep default, floor = %v", cfg.Cost.FloorMinutes)
	}
	if len(cfg.Analysis.StaticExtensions) != 1 || cfg.Analysis.StaticExtensions[0] != "js" {
		t.Errorf("unexpected extensions: %v", cfg.Analysis.StaticExtensions)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ZAPI_COST__BASE_FEE_USD", "9.75")
	t.Setenv("ZAPI_VAULT__MASTER_SECRET", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cost.BaseFeeUSD != 9.75 {
		t.Errorf("env override lost, base fee = %v", cfg.Cost.BaseFeeUSD)
	}
	if cfg.Vault.MasterSecret != "from-env" {
		t.Errorf("env override lost, master secret = %q", cfg.Vault.MasterSecret)
	}
}

func TestMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
