package extract

import (
	"time"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

type Job struct {
	Path string
	Stem string // output file stem, unique within the run
}

// Result holds the outcome of a processed job.
type Result struct {
	Source        string
	Format        string
	ContentHash   string
	OutputPath    string
	ExtractionID  string
	Response      models.Response
	Stored        models.Response // unfiltered envelope recorded in the history db
	Error         error
	ErrorType     string
	WordCounts    map[string]int
	FileSizeBytes int64
	Duration      time.Duration
	Cached        bool
}

// ResultOutput is the structured output for a single input.
type ResultOutput struct {
	Source       string `json:"source" yaml:"source"`
	OutputPath   string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	ExtractionID string `json:"extraction_id,omitempty" yaml:"extraction_id,omitempty"`
	Status       string `json:"status" yaml:"status"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType    string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Tables       int    `json:"tables,omitempty" yaml:"tables,omitempty"`
	Sections     int    `json:"sections,omitempty" yaml:"sections,omitempty"`
	Warnings     int    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Cached       bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status   string         `json:"status" yaml:"status"`
	Results  []ResultOutput `json:"results" yaml:"results"`
	Stats    Stats          `json:"stats" yaml:"stats"`
	Manifest string         `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	TotalFiles       int      `json:"total_files" yaml:"total_files"`
	Successful       int      `json:"successful" yaml:"successful"`
	Failed           int      `json:"failed" yaml:"failed"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
