package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-pdf-parser/internal/common"
	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/db"
	"github.com/dtnitsch/llm-pdf-parser/pkg/filter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/pipeline"
	"github.com/dtnitsch/llm-pdf-parser/pkg/processor"
)

// Flags returns the flags of the serve command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address"},
		&cli.StringFlag{Name: "rules", Usage: "YAML rules file"},
		&cli.StringFlag{Name: "filter", Usage: "output filter applied to every response"},
		&cli.BoolFlag{Name: "readability", Usage: "HTML uploads: keep only the main content"},
		&cli.Int64Flag{Name: "max-body-mb", Value: DefaultMaxBodyBytes >> 20, Usage: "largest accepted upload in MiB"},
		&cli.StringFlag{Name: "db", Usage: "path to the history database (default: next to the binary)"},
		&cli.BoolFlag{Name: "no-db", Usage: "do not record extractions"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}

func ServeAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var rules models.Rules
	if c.IsSet("rules") {
		var err error
		rules, err = models.LoadRules(c.String("rules"))
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
	}

	filterStrategy, err := filter.ParseStrategy(c.String("filter"))
	if err != nil {
		return fmt.Errorf("invalid filter strategy: %w", err)
	}

	var database *db.DB
	if !c.Bool("no-db") {
		database, err = db.Open(c.String("db"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
	}

	pipelineConfig := pipeline.ConfigFromRules(rules)
	pipelineConfig.Logger = logger
	proc := processor.New(processor.Config{
		Pipeline:    pipelineConfig,
		Filter:      filterStrategy,
		Readability: c.Bool("readability"),
	})

	svc := New(proc, database, logger, c.Int64("max-body-mb")<<20)
	svc.SettingsHash = common.SettingsHash(rules, c.Bool("readability"), 0)
	srv := NewHTTPServer(c.String("addr"), svc.Router())

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr, "history", database != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
