// Package pipeline runs the extraction stages over one RawDocument:
// separate, classify, extract key information, segment, assemble.
//
// Failures follow one policy. A stage that returns an error or panics
// aborts the whole document with ExtractionPartialFailure. Problems with a
// single table or text block are contained: the item is flagged, a warning
// is recorded and extraction continues.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/assembler"
	"github.com/dtnitsch/llm-pdf-parser/pkg/classifier"
	"github.com/dtnitsch/llm-pdf-parser/pkg/keyinfo"
	"github.com/dtnitsch/llm-pdf-parser/pkg/segmenter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/separator"
)

// Config configures a Pipeline. The zero value uses every default.
type Config struct {
	Classifier classifier.Config
	KeyInfo    keyinfo.Config
	Segmenter  segmenter.Config
	Logger     *slog.Logger // nil discards
}

// ConfigFromRules maps user rules onto stage configuration.
func ConfigFromRules(r models.Rules) Config {
	var cfg Config
	for _, s := range r.Signatures {
		cfg.Classifier.Signatures = append(cfg.Classifier.Signatures, classifier.Signature{
			Name:     s.Category,
			Keywords: s.Keywords,
		})
	}
	cfg.Classifier.LeadingRows = r.LeadingRows
	cfg.KeyInfo.Windows = r.Windows
	cfg.Segmenter.PageGap = r.PageGap
	if r.FormatText != nil {
		cfg.Segmenter.FormatText = *r.FormatText
	}
	cfg.Segmenter.MaxHeadingRunes = r.Headings.MaxRunes
	cfg.Segmenter.MaxHeadingWords = r.Headings.MaxWords
	return cfg
}

// Pipeline is immutable after New and safe for concurrent Extract calls.
type Pipeline struct {
	classifier *classifier.Classifier
	extractor  *keyinfo.Extractor
	segmenter  *segmenter.Segmenter
	logger     *slog.Logger
}

// New builds a Pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		classifier: classifier.New(cfg.Classifier),
		extractor:  keyinfo.New(cfg.KeyInfo),
		segmenter:  segmenter.New(cfg.Segmenter),
		logger:     logger,
	}
}

// Extract runs every stage over doc. A nil or empty document succeeds with
// empty fields.
func (p *Pipeline) Extract(doc *models.RawDocument) (*models.ExtractionResult, error) {
	var (
		streams  separator.Streams
		tables   []models.ClassifiedTable
		info     models.KeyInformation
		sections []models.DocumentSection
		warnings []models.Warning
		result   *models.ExtractionResult
	)

	err := stage(ComponentSeparator, func() (err error) {
		streams, err = separator.Separate(doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = stage(ComponentClassifier, func() error {
		tables = make([]models.ClassifiedTable, 0, len(streams.Tables))
		for i, tb := range streams.Tables {
			ct, w := p.classifier.Classify(i, tb)
			tables = append(tables, ct)
			warnings = append(warnings, w...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ComponentExtractor, func() error {
		headers := make([][]string, 0, len(tables))
		for _, t := range tables {
			headers = append(headers, t.Headers)
		}
		var w []models.Warning
		info, w = p.extractor.Extract(keyinfo.Input{
			Text:    streams.Text,
			Headers: headers,
			Tables:  tables,
		})
		warnings = append(warnings, w...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ComponentSegmenter, func() error {
		sections = p.segmenter.Segment(streams.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ComponentAssembler, func() (err error) {
		result, err = assembler.Assemble(assembler.Parts{
			Tables:         tables,
			KeyInformation: info,
			Sections:       sections,
			Warnings:       warnings,
			BlockCount:     doc.BlockCount(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		p.logger.Debug("extraction warning",
			slog.String("kind", string(w.Kind)),
			slog.Int("seq", w.Seq),
			slog.Int("page", w.Page),
			slog.String("message", w.Message))
	}
	p.logger.Debug("extraction complete",
		slog.Int("tables", len(tables)),
		slog.Int("sections", len(sections)),
		slog.Int("warnings", len(warnings)))

	return result, nil
}

// stage runs fn and turns an error or a panic into ExtractionPartialFailure.
func stage(component string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionPartialFailure{Component: component, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		return &ExtractionPartialFailure{Component: component, Cause: err}
	}
	return nil
}
