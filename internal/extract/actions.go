package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-pdf-parser/internal/common"
	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/analytics"
	"github.com/dtnitsch/llm-pdf-parser/pkg/converter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/db"
	"github.com/dtnitsch/llm-pdf-parser/pkg/filter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/manifest"
	"github.com/dtnitsch/llm-pdf-parser/pkg/pipeline"
	"github.com/dtnitsch/llm-pdf-parser/pkg/processor"
	"github.com/dtnitsch/llm-pdf-parser/pkg/storage"
)

// Flags returns the flags of the extract command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Usage: "input file or directory (repeatable; positional args also accepted)"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 4, Usage: "number of concurrent workers"},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Value: "results", Usage: "directory for <name>_extracted files and the batch manifest"},
		&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or yaml"},
		&cli.StringFlag{Name: "rules", Usage: "YAML file overriding signatures, heading thresholds, page gap and field windows"},
		&cli.StringFlag{Name: "filter", Usage: `output filter, e.g. "type:room_rates|meal_plans,rows:>=2,section:rates"`},
		&cli.StringFlag{Name: "fields", Usage: "comma-separated top-level envelope fields to keep (success,file,extracted_data,summary,error)"},
		&cli.BoolFlag{Name: "terse", Usage: "abbreviate top-level envelope keys"},
		&cli.BoolFlag{Name: "xlsx", Usage: "also write <name>_extracted.xlsx with one sheet per table type"},
		&cli.BoolFlag{Name: "readability", Usage: "HTML inputs: keep only the main content"},
		&cli.IntFlag{Name: "max-pages", Usage: "PDF inputs: stop after this many pages (0 = all)"},
		&cli.Int64Flag{Name: "max-file-mb", Usage: "skip inputs larger than this many MiB (0 = no limit)"},
		&cli.IntFlag{Name: "top-keywords", Value: 10, Usage: "keywords listed in each summary"},
		&cli.BoolFlag{Name: "reuse", Usage: "reuse stored results for inputs whose content hash was already extracted"},
		&cli.BoolFlag{Name: "no-manifest", Usage: "skip the summary-<date>.yaml batch manifest"},
		&cli.StringFlag{Name: "db", Usage: "path to the history database (default: next to the binary)"},
		&cli.BoolFlag{Name: "no-db", Usage: "do not record extractions"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}

func ExtractAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	outputFormat := strings.ToLower(c.String("format"))
	if outputFormat != "json" && outputFormat != "yaml" {
		fmt.Fprintf(os.Stderr, "Error: unsupported --format %q (use json or yaml)\n", outputFormat)
		os.Exit(1)
	}

	inputs, err := collectInputs(append(c.StringSlice("input"), c.Args().Slice()...))
	if err != nil {
		logger.Error("failed to read inputs", "error", err)
		os.Exit(2)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input files provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  lpp extract rates.pdf offers.md`)
		fmt.Fprintln(os.Stderr, `  lpp extract --input docs/ --workers 8 --xlsx`)
		fmt.Fprintln(os.Stderr, `  lpp extract --filter "type:room_rates,rows:>=2" rates.json`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: lpp extract --help")
		os.Exit(1)
	}

	config := &models.ExtractConfig{
		Inputs:      inputs,
		WorkerCount: c.Int("workers"),
		OutputDir:   c.String("output-dir"),
	}
	if c.IsSet("rules") {
		config.Rules, err = models.LoadRules(c.String("rules"))
		if err != nil {
			logger.Error("failed to load rules", "error", err)
			os.Exit(2)
		}
		logger.Info("Rules loaded", "rules", c.String("rules"))
	}

	filterStrategy, err := filter.ParseStrategy(c.String("filter"))
	if err != nil {
		logger.Error("invalid filter strategy", "error", err)
		os.Exit(2)
	}

	var database *db.DB
	if !c.Bool("no-db") {
		database, err = db.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer database.Close()
	}

	pipelineConfig := pipeline.ConfigFromRules(config.Rules)
	pipelineConfig.Logger = logger

	r := &runner{
		logger: logger,
		proc: processor.New(processor.Config{
			Pipeline:    pipelineConfig,
			TopKeywords: c.Int("top-keywords"),
			Filter:      filterStrategy,
			Readability: c.Bool("readability"),
			MaxPages:    c.Int("max-pages"),
		}),
		store:        &storage.Storage{},
		database:     database,
		outputDir:    config.OutputDir,
		format:       outputFormat,
		fields:       c.String("fields"),
		terse:        c.Bool("terse"),
		xlsx:         c.Bool("xlsx"),
		reuse:        c.Bool("reuse"),
		settingsHash: common.SettingsHash(config.Rules, c.Bool("readability"), c.Int("max-pages")),
		maxFileBytes: c.Int64("max-file-mb") << 20,
	}

	allResults, finalWordCounts, runErr := run(c.Context, logger, config, r)

	finalOutput := buildFinalOutput(allResults, finalWordCounts, runErr)
	finalOutput.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()

	if !c.Bool("no-manifest") {
		path, err := manifest.GenerateSummary(toDocumentResults(allResults), finalWordCounts, r.store, config.OutputDir)
		if err != nil {
			logger.Warn("Failed to write batch manifest", "error", err)
		} else {
			finalOutput.Manifest = path
		}
	}

	var outputData []byte
	var marshalErr error
	if outputFormat == "yaml" {
		outputData, marshalErr = yaml.Marshal(finalOutput)
	} else {
		outputData, marshalErr = json.MarshalIndent(finalOutput, "", "  ")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal final output", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(outputData))

	if code := exitCode(finalOutput.Stats); code != 0 {
		os.Exit(code)
	}
	return nil
}

// collectInputs expands directories (one level, supported extensions only)
// and drops duplicates.
func collectInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range common.DedupeInputs(args) {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported per input as read errors.
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := converter.Detect(e.Name()); err != nil {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	return common.DedupeInputs(paths), nil
}

func buildFinalOutput(results []Result, wordCounts map[string]int, runErr error) *FinalOutput {
	out := &FinalOutput{
		Results: make([]ResultOutput, 0, len(results)),
		Stats: Stats{
			TotalFiles:  len(results),
			TopKeywords: analytics.TopKeywords(wordCounts, manifest.TopKeywordCount),
		},
	}

	for _, r := range results {
		ro := ResultOutput{
			Source:       r.Source,
			OutputPath:   r.OutputPath,
			ExtractionID: r.ExtractionID,
			Cached:       r.Cached,
		}
		if r.Error != nil {
			out.Stats.Failed++
			ro.Status = "failed"
			ro.Error = r.Error.Error()
			ro.ErrorType = r.ErrorType
		} else {
			out.Stats.Successful++
			ro.Status = "success"
			if data := r.Response.ExtractedData; data != nil {
				ro.Tables = len(data.AllTables())
				ro.Sections = len(data.DocumentSections)
				ro.Warnings = len(data.Warnings)
			}
		}
		out.Results = append(out.Results, ro)
	}

	if runErr != nil {
		out.Status = "partial_failure"
	} else {
		out.Status = "success"
	}
	return out
}

func toDocumentResults(results []Result) []manifest.DocumentResult {
	out := make([]manifest.DocumentResult, 0, len(results))
	for _, r := range results {
		out = append(out, manifest.DocumentResult{
			Source:        r.Source,
			OutputPath:    r.OutputPath,
			ExtractionID:  r.ExtractionID,
			Response:      r.Response,
			ErrorType:     r.ErrorType,
			WordCounts:    r.WordCounts,
			FileSizeBytes: r.FileSizeBytes,
		})
	}
	return out
}

// exitCode is 0 when every input succeeded, 2 when all failed and 1 otherwise.
func exitCode(s Stats) int {
	if s.Failed > 0 && s.Failed == s.TotalFiles {
		return 2
	}
	if s.Failed > 0 {
		return 1
	}
	return 0
}
