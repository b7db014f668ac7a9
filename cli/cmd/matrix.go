package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/cli/render"
	"github.com/concord-run/concord/log"
)

// MatrixCommand returns the capability matrix command.
// Read-only: reports each backend's declared capabilities and current
// availability without dispatching anything.
func MatrixCommand() *cli.Command {
	return &cli.Command{
		Name:   "matrix",
		Usage:  "Show the backend capability matrix",
		Flags:  ReadOnlyFlags(),
		Action: matrixAction,
	}
}

func matrixAction(c *cli.Context) error {
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

	rows := registry.Matrix()
	if c.Bool("tui") {
		return r.RenderTUI("matrix", rows)
	}
	return r.Render(rows)
}
