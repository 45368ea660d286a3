package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/llm-pdf-parser/pkg/db"
)

// ListAction prints the most recent extractions.
func ListAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	extractions, err := database.ListExtractions(c.Int("limit"), c.Bool("failed"))
	if err != nil {
		return fmt.Errorf("failed to list extractions: %w", err)
	}

	w := c.App.Writer
	if len(extractions) == 0 {
		fmt.Fprintln(w, "No extractions found")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-20s %-8s %-7s %-9s %-30s %s\n",
		"ID", "Created", "Status", "Tables", "Sections", "Resort", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, e := range extractions {
		status := "success"
		if !e.Success {
			status = "failed"
		}
		resort := "-"
		if e.ResortName.Valid {
			resort = truncate(e.ResortName.String, 30)
		}
		fmt.Fprintf(w, "%-10s %-20s %-8s %-7d %-9d %-30s %s\n",
			shortID(e.ID),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			status,
			e.TableCount,
			e.SectionCount,
			resort,
			e.Source,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d extractions\n", len(extractions))
	fmt.Fprintf(w, "\nTip: Use 'lpp db show <id>' to see details\n")

	return nil
}

// ShowAction prints one extraction. --json prints the stored envelope instead.
func ShowAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("extraction ID required\nUsage: lpp db show <id>\nExample: lpp db show 3f2a9c1e")
	}

	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	e, err := database.GetExtraction(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("json") {
		if !e.ResultJSON.Valid {
			return fmt.Errorf("extraction %s has no stored result", e.ID)
		}
		fmt.Fprintln(w, e.ResultJSON.String)
		return nil
	}

	fmt.Fprintf(w, "Extraction %s\n", e.ID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Created:     %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source:      %s (%s)\n", e.Source, e.Format)
	fmt.Fprintf(w, "Hash:        %s\n", e.ContentHash)
	fmt.Fprintf(w, "Duration:    %s\n", e.Duration)
	if !e.Success {
		fmt.Fprintf(w, "Status:      failed\n")
		fmt.Fprintf(w, "Error:       %s\n", e.Error.String)
		return nil
	}
	fmt.Fprintf(w, "Status:      success\n")
	if e.OutputPath.Valid {
		fmt.Fprintf(w, "Output:      %s\n", e.OutputPath.String)
	}
	fmt.Fprintf(w, "Resort:      %s\n", orNone(e.ResortName.String))
	fmt.Fprintf(w, "Validity:    %s\n", orNone(e.ValidityPeriod.String))
	fmt.Fprintf(w, "Currency:    %s\n", orNone(e.Currency.String))
	fmt.Fprintf(w, "Language:    %s\n", orNone(e.Language.String))
	fmt.Fprintf(w, "Counts:      %d tables, %d sections, %d warnings\n", e.TableCount, e.SectionCount, e.WarningCount)

	offers, err := database.GetOffers(e.ID)
	if err != nil {
		return err
	}
	if len(offers) > 0 {
		fmt.Fprintf(w, "\nOffers (%d):\n", len(offers))
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for i, o := range offers {
			fmt.Fprintf(w, "%2d. %s\n", i+1, o)
		}
	}

	own, err := database.QueryTables(dbpkg.TableQuery{ExtractionID: e.ID})
	if err != nil {
		return err
	}
	if len(own) > 0 {
		fmt.Fprintf(w, "\nTables (%d):\n", len(own))
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, t := range own {
			fmt.Fprintf(w, "%2d. [%s] page %d, %d rows: %s\n",
				t.TableID, t.Category, t.Page, t.RowCount, strings.Join(t.Headers, " | "))
		}
	}

	fmt.Fprintf(w, "\nTip: Use 'lpp db show --json %s' to see the stored result\n", shortID(e.ID))
	return nil
}

// QueryAction searches stored tables across extractions.
func QueryAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	q := dbpkg.TableQuery{
		MinRows: c.Int("min-rows"),
		Source:  c.String("source"),
		Limit:   c.Int("limit"),
	}
	if t := c.String("type"); t != "" {
		for _, cat := range strings.Split(t, "|") {
			q.Categories = append(q.Categories, strings.TrimSpace(cat))
		}
	}

	tables, err := database.QueryTables(q)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}

	w := c.App.Writer
	if c.Bool("json") {
		data, err := json.MarshalIndent(tables, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tables: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found matching filters")
		if len(q.Categories) > 0 {
			fmt.Fprintf(w, "  - Filter: type %s\n", strings.Join(q.Categories, "|"))
		}
		if q.MinRows > 0 {
			fmt.Fprintf(w, "  - Filter: rows >= %d\n", q.MinRows)
		}
		if q.Source != "" {
			fmt.Fprintf(w, "  - Filter: source '%s'\n", q.Source)
		}
		return nil
	}

	fmt.Fprintf(w, "%-10s %-6s %-12s %-5s %-5s %-30s %s\n",
		"ID", "Table", "Type", "Page", "Rows", "Source", "Headers")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, t := range tables {
		fmt.Fprintf(w, "%-10s %-6d %-12s %-5d %-5d %-30s %s\n",
			shortID(t.ExtractionID),
			t.TableID,
			t.Category,
			t.Page,
			t.RowCount,
			truncate(t.Source, 30),
			strings.Join(t.Headers, " | "),
		)
	}

	fmt.Fprintf(w, "\nFound: %d tables\n", len(tables))
	return nil
}

// DeleteAction removes an extraction and its tables and offers.
func DeleteAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("extraction ID required\nUsage: lpp db delete <id>")
	}

	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	e, err := database.GetExtraction(c.Args().First())
	if err != nil {
		return err
	}
	if err := database.DeleteExtraction(e.ID); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Deleted extraction %s (%s)\n", e.ID, e.Source)
	return nil
}
