// Package processor turns raw input bytes into a service envelope: convert,
// extract, summarize, filter. The extract command and the HTTP server share it.
package processor

import (
	"context"
	"errors"
	"time"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/analytics"
	"github.com/dtnitsch/llm-pdf-parser/pkg/converter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/detector"
	"github.com/dtnitsch/llm-pdf-parser/pkg/filter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/pipeline"
	"github.com/dtnitsch/llm-pdf-parser/pkg/separator"
)

// Error types reported alongside failed envelopes.
const (
	ErrorTypeConversion = "conversion_error"
	ErrorTypeInput      = "input_error"
	ErrorTypeExtraction = "extraction_error"
	ErrorTypeCanceled   = "canceled"
)

// Config configures a Processor.
type Config struct {
	Pipeline    pipeline.Config
	TopKeywords int
	Filter      *filter.Strategy
	Readability bool
	MaxPages    int
}

// Processor is safe for concurrent use.
type Processor struct {
	pipeline    *pipeline.Pipeline
	detector    *detector.Detector
	filter      *filter.Strategy
	readability bool
	maxPages    int
}

// New builds a Processor.
func New(cfg Config) *Processor {
	return &Processor{
		pipeline:    pipeline.New(cfg.Pipeline),
		detector:    detector.New(cfg.TopKeywords),
		filter:      cfg.Filter,
		readability: cfg.Readability,
		maxPages:    cfg.MaxPages,
	}
}

// Outcome is the result of processing one input. Response is the filtered
// envelope returned to the caller; Stored is the unfiltered one kept in the
// history database.
type Outcome struct {
	Response   models.Response
	Stored     models.Response
	Err        error
	ErrorType  string
	WordCounts map[string]int
	Duration   time.Duration
}

// Process converts data and extracts it. Failures are reported in the
// envelope and in Err; Process itself never fails.
func (p *Processor) Process(ctx context.Context, format converter.Format, data []byte, source string) Outcome {
	start := time.Now()
	out := p.process(ctx, format, data, source)
	out.Duration = time.Since(start)
	return out
}

func (p *Processor) process(ctx context.Context, format converter.Format, data []byte, source string) Outcome {
	doc, err := converter.Convert(ctx, format, data, converter.Options{
		Source:      source,
		Readability: p.readability,
		MaxPages:    p.maxPages,
	})
	if err != nil {
		kind := ErrorTypeConversion
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = ErrorTypeCanceled
		}
		return failed(err, kind)
	}

	result, err := p.pipeline.Extract(doc)
	if err != nil {
		var inputErr *separator.ConversionInputError
		if errors.As(err, &inputErr) {
			return failed(err, ErrorTypeInput)
		}
		return failed(err, ErrorTypeExtraction)
	}

	summary := p.detector.Summarize(result)
	return Outcome{
		Response:   models.NewSuccessResponse(source, filter.Apply(result, p.filter), summary),
		Stored:     models.NewSuccessResponse(source, result, summary),
		WordCounts: analytics.WordFrequency(result.NarrativeText),
	}
}

// Respond builds the envelope for a previously extracted, unfiltered result
// with this processor's summary settings and filter.
func (p *Processor) Respond(source string, result *models.ExtractionResult) models.Response {
	return models.NewSuccessResponse(source, filter.Apply(result, p.filter), p.detector.Summarize(result))
}

func failed(err error, kind string) Outcome {
	resp := models.NewErrorResponse(err)
	return Outcome{Response: resp, Stored: resp, Err: err, ErrorType: kind}
}
