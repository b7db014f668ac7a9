package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/cli/render"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/rollback"
)

// exitRollbackExhausted is returned when every restore attempt failed.
const exitRollbackExhausted = 3

// RollbackCommand returns the rollback command.
// Restores a snapshot and verifies the workspace, retrying the full
// sequence on failure.
func RollbackCommand() *cli.Command {
	return &cli.Command{
		Name:      "rollback",
		Usage:     "Restore a workspace snapshot and verify it",
		ArgsUsage: "<snapshot-id>",
		Flags: append(ReadOnlyFlags(),
			WorkdirFlag,
			&cli.StringFlag{
				Name:  "snapshot-root",
				Usage: "Snapshot store root directory",
			},
			&cli.StringSliceFlag{
				Name:  "verify",
				Usage: "Post-rollback verification command (repeatable)",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Extra attempts after the first failure",
				Value: rollback.DefaultRetries,
			},
		),
		Action: rollbackAction,
	}
}

func rollbackAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for rollback", 1)
	}

	snapshotID := c.Args().First()
	if snapshotID == "" {
		return cli.Exit("rollback requires a snapshot id", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	workdir := resolveWorkdir(c, cfg)
	store, err := buildStore(c, cfg, workdir)
	if err != nil {
		return err
	}

	logger := log.NewLogger("rollback")
	engine := rollback.NewEngine(store, logger, metrics.NewCollector(cfg.Identity))

	verify := c.StringSlice("verify")
	if len(verify) == 0 {
		verify = cfg.Rollback.VerifyCommands
	}
	retries := c.Int("retries")
	opts := rollback.Options{
		VerifyCommands: verify,
		Retries:        &retries,
		Workdir:        workdir,
	}
	if !c.IsSet("retries") && cfg.Rollback.Retries != nil {
		opts.Retries = cfg.Rollback.Retries
	}

	if err := engine.Rollback(c.Context, snapshotID, opts); err != nil {
		var exhausted *rollback.ExhaustedError
		if errors.As(err, &exhausted) {
			return cli.Exit(err.Error(), exitRollbackExhausted)
		}
		return cli.Exit(fmt.Sprintf("rollback failed: %v", err), 1)
	}

	return r.Render(map[string]any{
		"snapshot_id": snapshotID,
		"restored":    true,
	})
}
