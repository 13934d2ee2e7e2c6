package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "none")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("AUTH_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 || cfg.Store.Driver != "sqlite" {
		t.Fatalf("env override ignored: %+v", cfg.Server)
	}
	if cfg.PK.Duration != 420 || cfg.PK.Tick != time.Second {
		t.Fatalf("pk defaults %+v", cfg.PK)
	}
	if cfg.Server.PingPeriod != 54*time.Second {
		t.Fatalf("ping period %v", cfg.Server.PingPeriod)
	}
	rate, _ := cfg.Wallet.CashRate()
	if rate.String() != "0.01" {
		t.Fatalf("cash rate %s", rate)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
server:
  mode: debug
  port: 7070
gifts:
  - name: Rosa
    price: 5
    category: popular
  - name: Rocket
    price: 5000
    triggers_auto_follow: true
seed:
  - username: alice
    diamonds: 100
wallet:
  cash_per_earning: "0.05"
auth:
  secret: file-secret
`
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Mode != "debug" || cfg.Server.Port != 7070 {
		t.Fatalf("server %+v", cfg.Server)
	}
	if len(cfg.Gifts) != 2 || !cfg.Gifts[1].TriggersAutoFollow || cfg.Gifts[0].Price != 5 {
		t.Fatalf("gifts %+v", cfg.Gifts)
	}
	if len(cfg.Seed) != 1 || cfg.Seed[0].Diamonds != 100 {
		t.Fatalf("seed %+v", cfg.Seed)
	}
	if cfg.Server.ReadLimit != 32768 {
		t.Fatalf("default lost next to file values: %d", cfg.Server.ReadLimit)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "none")
	t.Setenv("AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("loaded without auth secret")
	}
}

func TestCashRateRejectsGarbage(t *testing.T) {
	if _, err := (WalletConfig{CashPerEarning: "abc"}).CashRate(); err == nil {
		t.Fatal("garbage accepted")
	}
	if _, err := (WalletConfig{CashPerEarning: "-1"}).CashRate(); err == nil {
		t.Fatal("negative accepted")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
