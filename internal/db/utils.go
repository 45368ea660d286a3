package db

import (
	"fmt"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/llm-pdf-parser/pkg/db"
)

// Commands returns the db subcommands.
func Commands() []*cli.Command {
	dbFlag := &cli.StringFlag{Name: "db", Usage: "path to the history database (default: next to the binary)"}
	return []*cli.Command{
		{
			Name:   "list",
			Usage:  "List recent extractions",
			Action: ListAction,
			Flags: []cli.Flag{
				dbFlag,
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum rows"},
				&cli.BoolFlag{Name: "failed", Usage: "only failed extractions"},
			},
		},
		{
			Name:      "show",
			Usage:     "Show one extraction",
			ArgsUsage: "<id or id prefix>",
			Action:    ShowAction,
			Flags: []cli.Flag{
				dbFlag,
				&cli.BoolFlag{Name: "json", Usage: "print the stored result envelope"},
			},
		},
		{
			Name:   "query",
			Usage:  "Search stored tables",
			Action: QueryAction,
			Flags: []cli.Flag{
				dbFlag,
				&cli.StringFlag{Name: "type", Usage: "table types, e.g. room_rates|transport"},
				&cli.IntFlag{Name: "min-rows", Usage: "minimum data rows"},
				&cli.StringFlag{Name: "source", Usage: "substring of the source path"},
				&cli.IntFlag{Name: "limit", Value: 50, Usage: "maximum rows"},
				&cli.BoolFlag{Name: "json", Usage: "print JSON"},
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete an extraction",
			ArgsUsage: "<id or id prefix>",
			Action:    DeleteAction,
			Flags:     []cli.Flag{dbFlag},
		},
	}
}

func openDB(c *cli.Context) (*dbpkg.DB, error) {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
