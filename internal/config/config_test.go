package config

import (
	"os"
	"path/filepath"
	"testing"

	xerrors "EthMCP-Wallet/internal/errors"
)

func TestLoadFailsWithoutRPCEndpoint(t *testing.T) {
	t.Setenv(EnvRPCURL, "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when RPC endpoint is missing")
	}
	if xerrors.CodeOf(err) != xerrors.CodeConfigMissing {
		t.Fatalf("code = %s, want CONFIG_MISSING", xerrors.CodeOf(err))
	}
}

func TestLoadDefaultsFromEnvOnly(t *testing.T) {
	t.Setenv(EnvRPCURL, "https://rpc.example.org")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web3.RPCURL != "https://rpc.example.org" {
		t.Fatalf("rpc url = %s", cfg.Web3.RPCURL)
	}
	if cfg.Ledger.Driver != "file" {
		t.Fatalf("driver = %s, want file", cfg.Ledger.Driver)
	}
	if cfg.Ledger.Redis.Prefix != "ethmcp" {
		t.Fatalf("redis prefix = %s, want ethmcp", cfg.Ledger.Redis.Prefix)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ethmcp.json")
	content := `{
  "ledger": {"driver": "redis"},
  "web3": {"rpc_url": "https://file.example.org"},
  "logging": {"audit": {"enabled": true}}
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvRPCURL, "https://env.example.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web3.RPCURL != "https://env.example.org" {
		t.Fatalf("env must win: rpc url = %s", cfg.Web3.RPCURL)
	}
	if cfg.Ledger.Driver != "redis" {
		t.Fatalf("driver = %s, want redis", cfg.Ledger.Driver)
	}
	if cfg.Runtime.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("data dir = %s", cfg.Runtime.DataDir)
	}
	if cfg.Logging.Audit.Path != filepath.Join(dir, "data", "audit.log") {
		t.Fatalf("audit path = %s", cfg.Logging.Audit.Path)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethmcp.json")
	if err := os.WriteFile(path, []byte(`{"ledger": {"driver": "etcd"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvRPCURL, "https://rpc.example.org")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if xerrors.CodeOf(err) != xerrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want INVALID_ARGUMENT", xerrors.CodeOf(err))
	}
}
