package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/acp"
	"github.com/concord-run/concord/bridge"
	"github.com/concord-run/concord/cli/config"
	"github.com/concord-run/concord/coordinate"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/snapshot"
	"github.com/concord-run/concord/types"
	"github.com/concord-run/concord/validator"
)

// defaultSnapshotRoot is used when neither flag nor config set one.
const defaultSnapshotRoot = ".concord/snapshots"

// loadConfig reads the optional config file named by --config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if c.IsSet("config") {
		return config.Load(c.String("config"))
	}
	return config.LoadOrDefault(c.String("config"))
}

// buildRegistry constructs the adapter registry, applying per-adapter
// process overrides from the config file.
func buildRegistry(cfg *config.Config, logger *log.Logger, collector *metrics.Collector) (*bridge.Registry, error) {
	specs := bridge.DefaultProcessSpecs()
	for i := range specs {
		override, ok := cfg.Adapters[specs[i].Name]
		if !ok {
			continue
		}
		if override.Binary != "" {
			specs[i].Binary = override.Binary
		}
		if len(override.Args) > 0 {
			specs[i].Args = override.Args
		}
		if len(override.Shim) > 0 {
			specs[i].Shim = override.Shim
		}
	}
	return bridge.NewRegistryFromSpecs(specs, bridge.DefaultFileDropSpecs(), logger, collector)
}

// buildSources constructs the validator vote sources from config.
func buildSources(cfg *config.Config) ([]validator.Source, error) {
	sources := make([]validator.Source, 0, len(cfg.Validators))
	for _, vc := range cfg.Validators {
		judge, err := validator.NewCLIJudge(vc.Name, vc.Command, vc.Timeout.Duration)
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", vc.Name, err)
		}
		sources = append(sources, judge)
	}
	return sources, nil
}

// buildCoordinator wires the coordinator with the full transport set: direct
// A2A, the opencode subprocess probe, and the quorum mesh.
func buildCoordinator(cfg *config.Config, logger *log.Logger, collector *metrics.Collector) (*coordinate.Coordinator, error) {
	schema := acp.NewValidator()

	probeCommand := cfg.Probe.Commands["opencode"]
	probe, err := acp.NewProbeTransport(schema, "opencode", probeCommand, cfg.Probe.Timeout.Duration, collector)
	if err != nil {
		return nil, err
	}

	sources, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}
	mesh := acp.NewMeshTransport(schema, sources, cfg.Mesh.VoteTimeout.Duration, logger, collector)

	return coordinate.NewCoordinator(coordinate.Options{
		Identity: cfg.Identity,
		Transports: map[types.Protocol]acp.Transport{
			types.ProtocolAcpA2A:      acp.NewDirectTransport(schema),
			types.ProtocolAcpOpenCode: probe,
			types.ProtocolAcpMesh:     mesh,
		},
		Runner:  coordinate.NewProcessRunner(cfg.MCP.Timeout.Duration, logger),
		Logger:  logger,
		Metrics: collector,
	}), nil
}

// buildStore opens the filesystem snapshot store rooted per flag/config.
func buildStore(c *cli.Context, cfg *config.Config, workdir string) (*snapshot.FSStore, error) {
	root := c.String("snapshot-root")
	if root == "" {
		root = cfg.SnapshotRoot
	}
	if root == "" {
		root = filepath.Join(workdir, defaultSnapshotRoot)
	}
	return snapshot.NewFSStore(root, workdir)
}

// resolveWorkdir prefers the flag, then config, then the current directory.
func resolveWorkdir(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("workdir") {
		return c.String("workdir")
	}
	if cfg.Workdir != "" {
		return cfg.Workdir
	}
	return c.String("workdir")
}
