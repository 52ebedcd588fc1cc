// Package config loads agent configuration with layered sources:
// defaults, then an optional YAML file, then AGENTKIT_-prefixed
// environment variables.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

const envPrefix = "AGENTKIT_"

type Config struct {
	Agent     AgentConfig     `koanf:"agent"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	TaskStore TaskStoreConfig `koanf:"taskstore"`
	Chains    []ChainConfig   `koanf:"chains"`
	Tokens    TokensConfig    `koanf:"tokens"`
	Servers   []ServerConfig  `koanf:"servers"`
}

type AgentConfig struct {
	// ID names this agent in transport envelopes and telemetry.
	ID      string `koanf:"id"`
	Version string `koanf:"version"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"` // stdout, otlp
	Endpoint string `koanf:"endpoint"`
}

type TaskStoreConfig struct {
	Backend string `koanf:"backend"` // memory, file, sqlite
	Dir     string `koanf:"dir"`     // file backend
	Path    string `koanf:"path"`    // sqlite backend
}

type ChainConfig struct {
	ChainID string `koanf:"chain_id"`
	Name    string `koanf:"name"`
	RPCURL  string `koanf:"rpc_url"`
}

type TokensConfig struct {
	// Path points at the YAML token registry.
	Path string `koanf:"path"`
}

// ServerConfig describes one remote tool server reached over stdio.
type ServerConfig struct {
	Name    string   `koanf:"name"`
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

// Load reads configuration from path (optional) and the environment.
// AGENTKIT_LOG_LEVEL overrides log.level, and so on.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("agent.id", "agentkit")
	k.Set("agent.version", "dev")
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")
	k.Set("taskstore.backend", "memory")
	k.Set("taskstore.dir", "")
	k.Set("tokens.path", "tokens.yaml")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, agenterrors.NewInternal("load config file", err).WithDetail("path", path)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, agenterrors.NewInternal("load environment config", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, agenterrors.NewInternal("decode config", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.TaskStore.Backend {
	case "memory", "file":
	case "sqlite":
		if c.TaskStore.Path == "" {
			return agenterrors.NewValidation("taskstore.path is required for the sqlite backend")
		}
	default:
		return agenterrors.NewValidation("taskstore.backend must be memory, file or sqlite").
			WithDetail("backend", c.TaskStore.Backend)
	}
	for _, chain := range c.Chains {
		if chain.ChainID == "" || chain.RPCURL == "" {
			return agenterrors.NewValidation("every chain needs chain_id and rpc_url")
		}
	}
	for _, server := range c.Servers {
		if server.Name == "" || server.Command == "" {
			return agenterrors.NewValidation("every server needs name and command")
		}
	}
	return nil
}
