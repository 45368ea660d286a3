package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-pdf-parser/internal/common"
	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/analytics"
	"github.com/dtnitsch/llm-pdf-parser/pkg/converter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/db"
	"github.com/dtnitsch/llm-pdf-parser/pkg/export"
	"github.com/dtnitsch/llm-pdf-parser/pkg/processor"
	"github.com/dtnitsch/llm-pdf-parser/pkg/storage"
)

// Error types of the extract command that happen outside the processor.
const (
	ErrorTypeRead     = "read_error"
	ErrorTypeTooLarge = "too_large"
	ErrorTypeWrite    = "write_error"
)

// runner holds everything a worker needs. database may be nil.
type runner struct {
	logger       *slog.Logger
	proc         *processor.Processor
	store        *storage.Storage
	database     *db.DB
	settingsHash string
	outputDir    string
	format       string // json or yaml
	fields       string
	terse        bool
	xlsx         bool
	reuse        bool
	maxFileBytes int64 // 0 = unlimited
}

func run(ctx context.Context, logger *slog.Logger, config *models.ExtractConfig, r *runner) ([]Result, map[string]int, error) {
	logger.Info("Starting extraction", "file_count", len(config.Inputs), "workers", config.WorkerCount)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(config.Inputs))
	results := make(chan Result, len(config.Inputs))

	for w := 1; w <= max(config.WorkerCount, 1); w++ {
		wg.Add(1)
		go worker(ctx, w, logger, r, &wg, jobs, results)
	}

	stems := common.OutputStems(config.Inputs)
	for _, path := range config.Inputs {
		jobs <- Job{Path: path, Stem: stems[path]}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Info("All extraction workers finished")

	// Workers finish in any order; report in input order.
	order := make(map[string]int, len(config.Inputs))
	for i, p := range config.Inputs {
		order[p] = i
	}
	allResults := make([]Result, 0, len(config.Inputs))
	var runErr error
	for result := range results {
		allResults = append(allResults, result)
		if result.Error != nil {
			runErr = fmt.Errorf("one or more jobs failed")
		}
	}
	sort.Slice(allResults, func(i, j int) bool {
		return order[allResults[i].Source] < order[allResults[j].Source]
	})

	intermediateResults := []map[string]int{}
	for _, result := range allResults {
		if result.WordCounts != nil {
			intermediateResults = append(intermediateResults, result.WordCounts)
		}
	}

	return allResults, analytics.Reduce(intermediateResults), runErr
}

func worker(ctx context.Context, id int, logger *slog.Logger, r *runner, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("Worker started job", "worker_id", id, "file", job.Path)
		result := r.process(ctx, job)
		if result.Error != nil {
			logger.Error("Extraction failed", "worker_id", id, "file", job.Path, "error_type", result.ErrorType, "error", result.Error)
		} else {
			logger.Info("Worker finished processing", "worker_id", id, "file", job.Path, "cached", result.Cached, "duration_ms", result.Duration.Milliseconds())
		}
		results <- result
	}
}

func (r *runner) process(ctx context.Context, job Job) Result {
	path := job.Path
	result := Result{Source: path}

	if r.maxFileBytes > 0 {
		stats, err := r.store.GetFileStats(path)
		if err != nil {
			return r.fail(result, err, ErrorTypeRead)
		}
		if stats.SizeBytes > r.maxFileBytes {
			return r.fail(result, fmt.Errorf("file is %d bytes, limit is %d", stats.SizeBytes, r.maxFileBytes), ErrorTypeTooLarge)
		}
	}

	data, err := r.store.ReadFile(path)
	if err != nil {
		return r.fail(result, err, ErrorTypeRead)
	}
	result.ContentHash = common.ContentHash(data)

	format, err := converter.Detect(path)
	if err != nil {
		return r.fail(result, err, processor.ErrorTypeConversion)
	}
	result.Format = string(format)

	if stored, ok := r.lookup(result.ContentHash); ok {
		result.Response = r.proc.Respond(path, stored)
		result.WordCounts = analytics.WordFrequency(stored.NarrativeText)
		result.Cached = true
	} else {
		out := r.proc.Process(ctx, format, data, path)
		result.Response = out.Response
		result.Stored = out.Stored
		result.WordCounts = out.WordCounts
		result.Duration = out.Duration
		if out.Err != nil {
			result.Error = out.Err
			result.ErrorType = out.ErrorType
			r.record(&result)
			return result
		}
	}

	if err := r.write(&result, job.Stem); err != nil {
		return r.fail(result, err, ErrorTypeWrite)
	}
	if !result.Cached {
		r.record(&result)
	}
	return result
}

// lookup returns the unfiltered result of an identical earlier input that
// was extracted with the same settings.
func (r *runner) lookup(hash string) (*models.ExtractionResult, bool) {
	if !r.reuse || r.database == nil {
		return nil, false
	}
	prev, err := r.database.FindByContentHash(hash, r.settingsHash)
	if err != nil || !prev.ResultJSON.Valid {
		return nil, false
	}
	var resp models.Response
	if err := json.Unmarshal([]byte(prev.ResultJSON.String), &resp); err != nil || resp.ExtractedData == nil {
		r.logger.Warn("Stored result is unreadable, extracting again", "extraction_id", prev.ID, "error", err)
		return nil, false
	}
	r.logger.Info("Reusing stored extraction", "extraction_id", prev.ID)
	return resp.ExtractedData, true
}

func (r *runner) write(result *Result, stem string) error {
	if stem == "" {
		stem = common.SafeStem(result.Source)
	}
	payload := common.FilterResultFields(result.Response, r.fields, false)
	if r.terse {
		payload = common.TerseKeys(payload)
	}

	var (
		data []byte
		err  error
	)
	if r.format == "yaml" {
		data, err = yaml.Marshal(payload)
	} else {
		data, err = json.MarshalIndent(payload, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	outPath := common.OutputPath(r.outputDir, stem, r.format)
	if err := r.store.SaveFile(outPath, data); err != nil {
		return err
	}
	result.OutputPath = outPath
	result.FileSizeBytes = int64(len(data))

	if r.xlsx && result.Response.ExtractedData != nil {
		book, err := export.TablesXLSX(result.Response.ExtractedData, r.logger)
		if err != nil {
			return err
		}
		if err := r.store.SaveFile(common.OutputPath(r.outputDir, stem, "xlsx"), book); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) record(result *Result) {
	if r.database == nil {
		return
	}
	id, err := r.database.RecordExtraction(db.RecordInput{
		Source:       result.Source,
		Format:       result.Format,
		ContentHash:  result.ContentHash,
		SettingsHash: r.settingsHash,
		Response:     result.Stored,
		OutputPath:   result.OutputPath,
		Duration:     result.Duration,
	})
	if err != nil {
		r.logger.Warn("Failed to record extraction to DB", "file", result.Source, "error", err)
		return
	}
	result.ExtractionID = id
}

func (r *runner) fail(result Result, err error, kind string) Result {
	result.Error = err
	result.ErrorType = kind
	result.Response = models.NewErrorResponse(err)
	result.Stored = result.Response
	r.record(&result)
	return result
}
