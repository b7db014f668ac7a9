package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/mcp"
)

// ServeMCPCommand returns the serve-mcp command.
// Serves the coordination tool surface over stdio, one JSON object per
// line, until stdin closes.
func ServeMCPCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve-mcp",
		Usage: "Serve coordination tools over stdio",
		Flags: []cli.Flag{
			ConfigFlag,
			WorkdirFlag,
			&cli.StringFlag{
				Name:  "snapshot-root",
				Usage: "Snapshot store root directory",
			},
		},
		Action: serveMCPAction,
	}
}

func serveMCPAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	workdir := resolveWorkdir(c, cfg)
	store, err := buildStore(c, cfg, workdir)
	if err != nil {
		return err
	}

	// Log to stderr: stdout carries the protocol stream.
	logger := log.NewLogger("mcp").WithOutput(os.Stderr)

	server, err := mcp.NewServer(logger, mcp.DefaultTools(store)...)
	if err != nil {
		return err
	}
	return server.Serve(c.Context, os.Stdin, os.Stdout)
}
