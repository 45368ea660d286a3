package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	dbcmd "github.com/dtnitsch/llm-pdf-parser/internal/db"
	"github.com/dtnitsch/llm-pdf-parser/internal/extract"
	"github.com/dtnitsch/llm-pdf-parser/internal/serve"
	"github.com/dtnitsch/llm-pdf-parser/pkg/help"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "lpp",
		Usage:   "Turn converted PDF rate sheets into structured JSON",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract tables, key information and sections from documents",
				ArgsUsage: "[files or directories...]",
				Flags:     extract.Flags(),
				Action:    extract.ExtractAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve /health and /parse over HTTP",
				Flags:  serve.Flags(),
				Action: serve.ServeAction,
			},
			{
				Name:        "db",
				Usage:       "Inspect the extraction history",
				Subcommands: dbcmd.Commands(),
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick-start reference in YAML",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
