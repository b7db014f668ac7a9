package config

import (
	"fmt"
	"time"
)

// Config represents a concord.yaml configuration file.
// All values are optional and act as defaults for concord command flags.
// CLI flags always override config values.
type Config struct {
	Identity     string                    `yaml:"identity"`
	Workdir      string                    `yaml:"workdir"`
	SnapshotRoot string                    `yaml:"snapshot_root"`
	Validators   []ValidatorConfig         `yaml:"validators"`
	Mesh         MeshConfig                `yaml:"mesh"`
	Probe        ProbeConfig               `yaml:"probe"`
	Adapters     map[string]AdapterConfig  `yaml:"adapters"`
	MCP          MCPConfig                 `yaml:"mcp"`
	Rollback     RollbackConfig            `yaml:"rollback"`
}

// ValidatorConfig defines one CLI-backed validator vote source.
type ValidatorConfig struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// MeshConfig holds quorum mesh defaults.
type MeshConfig struct {
	VoteTimeout Duration `yaml:"vote_timeout,omitempty"`
}

// ProbeConfig holds subprocess-probe transport defaults.
type ProbeConfig struct {
	Timeout Duration `yaml:"timeout,omitempty"`
	// Commands overrides the probe command per backend name.
	Commands map[string][]string `yaml:"commands,omitempty"`
}

// AdapterConfig overrides one adapter's process invocation.
type AdapterConfig struct {
	Binary string   `yaml:"binary,omitempty"`
	Args   []string `yaml:"args,omitempty"`
	Shim   []string `yaml:"shim,omitempty"`
}

// MCPConfig holds tool server call defaults.
type MCPConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// RollbackConfig holds rollback engine defaults.
type RollbackConfig struct {
	VerifyCommands []string `yaml:"verify_commands,omitempty"`
	Retries        *int     `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Validators))
	for i, v := range c.Validators {
		if v.Name == "" {
			return fmt.Errorf("validators[%d]: name is required", i)
		}
		if len(v.Command) == 0 {
			return fmt.Errorf("validator %s: command is required", v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate validator name: %s", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}
