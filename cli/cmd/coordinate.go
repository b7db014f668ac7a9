package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/cli/config"
	"github.com/concord-run/concord/cli/render"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// Coordination exit codes.
const (
	exitCoordinationFailed = 1
	exitNeedsHuman         = 2
)

// CoordinateCommand returns the coordinate command.
// Runs one coordination phase for a named adapter over the selected
// protocol.
func CoordinateCommand() *cli.Command {
	return &cli.Command{
		Name:  "coordinate",
		Usage: "Run a coordination phase for an adapter",
		Flags: append(ReadOnlyFlags(),
			WorkdirFlag,
			&cli.StringFlag{
				Name:  "protocol",
				Usage: "Coordination protocol: none, mcp, acp-a2a, acp-opencode, acp-mesh",
				Value: string(types.ProtocolNone),
			},
			&cli.StringFlag{
				Name:  "phase",
				Usage: "Coordination phase: pre-exec, post-exec",
				Value: string(types.PhasePreExec),
			},
			&cli.StringFlag{
				Name:     "adapter",
				Usage:    "Adapter being coordinated",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "contract",
				Usage:    "Contract identifier",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "step-count",
				Usage: "Number of steps in the contract's plan",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "Extra payload forwarded to the transport, as JSON",
			},
			&cli.StringFlag{
				Name:  "mcp-tool",
				Usage: "Tool to invoke when protocol is mcp",
			},
		),
		Action: coordinateAction,
	}
}

func coordinateAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for coordinate", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.NewLogger("coordinate")
	collector := metrics.NewCollector(cfg.Identity)

	coordinator, err := buildCoordinator(cfg, logger, collector)
	if err != nil {
		return err
	}

	request, err := buildRequest(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	result := coordinator.Dispatch(c.Context, request)
	if renderErr := r.Render(result); renderErr != nil {
		return renderErr
	}

	if !result.OK {
		if result.Response != nil && result.Response["mode"] == string(types.ConsensusNeedsHuman) {
			return cli.Exit("", exitNeedsHuman)
		}
		return cli.Exit("", exitCoordinationFailed)
	}
	return nil
}

// buildRequest assembles the coordination request from flags and config.
func buildRequest(c *cli.Context, cfg *config.Config) (*types.CoordinationRequest, error) {
	var payload map[string]any
	if raw := c.String("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("invalid --payload JSON: %w", err)
		}
	}

	request := &types.CoordinationRequest{
		Protocol:   types.Protocol(c.String("protocol")),
		Phase:      types.Phase(c.String("phase")),
		Workdir:    resolveWorkdir(c, cfg),
		Adapter:    c.String("adapter"),
		ContractID: c.String("contract"),
		StepCount:  c.Int("step-count"),
		Payload:    payload,
	}

	if request.Protocol == types.ProtocolMCP {
		tool := c.String("mcp-tool")
		if tool == "" {
			return nil, fmt.Errorf("protocol mcp requires --mcp-tool")
		}
		if cfg.MCP.Command == "" {
			return nil, fmt.Errorf("protocol mcp requires mcp.command in the config file")
		}
		request.MCP = &types.MCPCommand{
			Command:   cfg.MCP.Command,
			Args:      cfg.MCP.Args,
			Tool:      tool,
			Arguments: payload,
		}
	}

	return request, nil
}
