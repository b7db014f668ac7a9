package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/cli/render"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// Dispatch exit codes.
const (
	exitDispatchFailed = 1
)

// DispatchCommand returns the dispatch command.
// Sends one work envelope to a named adapter and reports the outcome.
func DispatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "dispatch",
		Usage:     "Dispatch a work envelope to a backend adapter",
		ArgsUsage: "<adapter>",
		Flags: append(ReadOnlyFlags(),
			WorkdirFlag,
			&cli.StringFlag{
				Name:     "contract",
				Usage:    "Contract identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "step",
				Usage:    "Step identifier within the contract's plan",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "stage",
				Usage: "Pipeline stage being advanced",
				Value: "implement",
			},
			&cli.StringFlag{
				Name:     "summary",
				Usage:    "Human-readable description of the work",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "verify",
				Usage: "Verification command (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Request a no-side-effect rehearsal from the backend",
			},
		),
		Action: dispatchAction,
	}
}

func dispatchAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for dispatch", 1)
	}

	name := c.Args().First()
	if name == "" {
		return cli.Exit("dispatch requires an adapter name", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.NewLogger("dispatch")
	collector := metrics.NewCollector(cfg.Identity)

	registry, err := buildRegistry(cfg, logger, collector)
	if err != nil {
		return err
	}

	adapter, ok := registry.Find(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown adapter: %s", name), 1)
	}

	envelope := &types.BridgeEnvelope{
		ContractID:     c.String("contract"),
		StepID:         c.String("step"),
		Stage:          c.String("stage"),
		Summary:        c.String("summary"),
		VerifyCommands: c.StringSlice("verify"),
	}
	dctx := &types.DispatchContext{
		Workdir: resolveWorkdir(c, cfg),
		DryRun:  c.Bool("dry-run"),
	}

	result, err := adapter.Dispatch(c.Context, envelope, dctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("dispatch failed: %v", err), exitDispatchFailed)
	}

	if renderErr := r.Render(result); renderErr != nil {
		return renderErr
	}
	if !result.Success {
		return cli.Exit("", exitDispatchFailed)
	}
	return nil
}
