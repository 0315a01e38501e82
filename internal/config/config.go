// Package config loads the TOML configuration files for both binaries.
// Loading follows the original dashboard project's approach: read the
// file at the path the caller passes (the binaries take it from -config),
// and if it does not exist, write out a generated default and continue
// rather than prompting interactively.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ConfigVersion is recorded in every generated config file. The field is
// read but neither checked nor migrated: a file carrying another version is
// loaded as is, since this repository carries no multi-version migration
// path.
const ConfigVersion = 1

// AgentConfig is the Agent's configuration file.
type AgentConfig struct {
	ConfigVersion int      `toml:"config_version"`
	FrontendAddr  string   `toml:"frontend_addr"`
	Nickname      string   `toml:"nickname"`
	LogLevel      string   `toml:"log_level"`
	Disks         []string `toml:"disks"`
}

// DefaultAgentConfig returns the configuration written out the first time
// an agent runs with no config file present.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		ConfigVersion: ConfigVersion,
		FrontendAddr:  "127.0.0.1:5001",
		Nickname:      "",
		LogLevel:      "info",
		Disks:         []string{"/"},
	}
}

// HubConfig is the Hub's configuration file.
type HubConfig struct {
	ConfigVersion int    `toml:"config_version"`
	BackendPort   int    `toml:"backend_port"`
	HTTPPort      int    `toml:"http_port"`
	LogLevel      string `toml:"log_level"`
	EnableTLS     bool   `toml:"enable_tls"`
	CertPath      string `toml:"cert_path"`
	KeyPath       string `toml:"key_path"`
}

// DefaultHubConfig returns the configuration written out the first time a
// hub runs with no config file present.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		ConfigVersion: ConfigVersion,
		BackendPort:   5001,
		HTTPPort:      8080,
		LogLevel:      "info",
		EnableTLS:     false,
	}
}

// LoadAgent reads the agent config at path, writing and returning the
// default if the file does not exist.
func LoadAgent(path string) (AgentConfig, error) {
	var cfg AgentConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = DefaultAgentConfig()
		if werr := writeDefault(path, cfg); werr != nil {
			return AgentConfig{}, werr
		}
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return AgentConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// LoadHub reads the hub config at path, writing and returning the default
// if the file does not exist.
func LoadHub(path string) (HubConfig, error) {
	var cfg HubConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = DefaultHubConfig()
		if werr := writeDefault(path, cfg); werr != nil {
			return HubConfig{}, werr
		}
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return HubConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func writeDefault(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}
