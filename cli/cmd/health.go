package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/bridge"
	"github.com/concord-run/concord/cli/render"
	"github.com/concord-run/concord/log"
)

// HealthCommand returns the health command.
// Runs each adapter's diagnostic checks against the working directory.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:      "health",
		Usage:     "Run backend health checks",
		ArgsUsage: "[adapter]",
		Flags:     append(ReadOnlyFlags(), WorkdirFlag),
		Action:    healthAction,
	}
}

func healthAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, log.NewNop(), nil)
	if err != nil {
		return err
	}

	workdir := resolveWorkdir(c, cfg)

	var reports []bridge.HealthReport
	if name := c.Args().First(); name != "" {
		adapter, ok := registry.Find(name)
		if !ok {
			return cli.Exit(fmt.Sprintf("unknown adapter: %s", name), 1)
		}
		reports = []bridge.HealthReport{adapter.Health(workdir)}
	} else {
		for _, adapter := range registry.List() {
			reports = append(reports, adapter.Health(workdir))
		}
	}

	if c.Bool("tui") {
		return r.RenderTUI("health", reports)
	}
	return r.Render(reports)
}
