package manifest

import (
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/analytics"
	"github.com/dtnitsch/llm-pdf-parser/pkg/storage"
)

// TopKeywordCount bounds the keyword lists of the manifest.
const TopKeywordCount = 25

// DocumentResult is what the extract command knows about one finished input.
type DocumentResult struct {
	Source        string
	OutputPath    string
	ExtractionID  string
	Response      models.Response
	ErrorType     string
	WordCounts    map[string]int
	FileSizeBytes int64
}

// Build assembles the manifest for a batch. aggregateKeywords is the reduced
// word count of every successful document.
func Build(results []DocumentResult, aggregateKeywords map[string]int, now time.Time) BatchManifest {
	m := BatchManifest{
		GeneratedAt:       now.Format(time.RFC3339),
		TotalFiles:        len(results),
		TableTotals:       make(map[string]int),
		AggregateKeywords: analytics.TopKeywords(aggregateKeywords, TopKeywordCount),
		Results:           make([]DocumentSummary, 0, len(results)),
	}

	for _, r := range results {
		summary := DocumentSummary{
			Source:       r.Source,
			ExtractionID: r.ExtractionID,
		}

		if !r.Response.Success {
			m.Failed++
			summary.Status = "error"
			summary.ErrorType = r.ErrorType
			summary.ErrorMessage = r.Response.Error
			m.Results = append(m.Results, summary)
			continue
		}

		m.Successful++
		summary.Status = "success"
		summary.OutputPath = r.OutputPath
		summary.SizeBytes = r.FileSizeBytes

		if data := r.Response.ExtractedData; data != nil {
			for c, tables := range data.TablesByType {
				m.TableTotals[string(c)] += len(tables)
				summary.TableCount += len(tables)
			}
			summary.SectionCount = len(data.DocumentSections)
			summary.WarningCount = len(data.Warnings)
			if data.KeyInformation.ResortName != nil {
				summary.ResortName = *data.KeyInformation.ResortName
			}
			if data.KeyInformation.ValidityPeriod != nil {
				summary.ValidityPeriod = *data.KeyInformation.ValidityPeriod
			}
		}
		if r.Response.Summary != nil {
			summary.Language = r.Response.Summary.Language
		}
		if r.WordCounts != nil {
			summary.TopKeywords = analytics.TopKeywords(r.WordCounts, TopKeywordCount)
		}

		m.Results = append(m.Results, summary)
	}

	return m
}

// GenerateSummary writes the batch manifest as summary-<date>.yaml under dir
// and returns its path.
func GenerateSummary(results []DocumentResult, aggregateKeywords map[string]int, s *storage.Storage, dir string) (string, error) {
	now := time.Now()
	m := Build(results, aggregateKeywords, now)

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	manifestPath := filepath.Join(dir, fmt.Sprintf("summary-%s.yaml", now.Format("2006-01-02")))
	if err := s.SaveFile(manifestPath, data); err != nil {
		return "", fmt.Errorf("failed to save manifest: %w", err)
	}

	return manifestPath, nil
}
