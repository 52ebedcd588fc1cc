package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Agent.ID != "agentkit" {
		t.Errorf("agent id = %q", cfg.Agent.ID)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.TaskStore.Backend != "memory" {
		t.Errorf("taskstore backend = %q, want memory", cfg.TaskStore.Backend)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry must default to disabled")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	content := `agent:
  id: chainweave-agent
log:
  level: debug
  format: json
taskstore:
  backend: sqlite
  path: /tmp/tasks.db
chains:
  - chain_id: "1"
    name: mainnet
    rpc_url: https://eth.example.org
servers:
  - name: prediction
    command: prediction-server
    args: ["--stdio"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Agent.ID != "chainweave-agent" {
		t.Errorf("agent id = %q", cfg.Agent.ID)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.TaskStore.Backend != "sqlite" || cfg.TaskStore.Path != "/tmp/tasks.db" {
		t.Errorf("taskstore = %+v", cfg.TaskStore)
	}
	if len(cfg.Chains) != 1 || cfg.Chains[0].ChainID != "1" {
		t.Errorf("chains = %+v", cfg.Chains)
	}
	if len(cfg.Servers) != 1 || cfg.Servers[0].Command != "prediction-server" {
		t.Errorf("servers = %+v", cfg.Servers)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AGENTKIT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn from env", cfg.Log.Level)
	}
}

func TestLoad_ValidatesBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("taskstore:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestLoad_SQLiteNeedsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("taskstore:\n  backend: sqlite\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when sqlite has no path")
	}
}

func TestLoad_IncompleteChainRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("chains:\n  - chain_id: \"1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a chain without rpc_url")
	}
}
