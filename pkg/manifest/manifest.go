package manifest

// BatchManifest is the summary YAML written after a batch extract. It lets a
// reader see every input's status and headline facts without opening each
// result file.
type BatchManifest struct {
	GeneratedAt       string            `yaml:"generated_at" json:"generated_at"`
	TotalFiles        int               `yaml:"total_files" json:"total_files"`
	Successful        int               `yaml:"successful" json:"successful"`
	Failed            int               `yaml:"failed" json:"failed"`
	TableTotals       map[string]int    `yaml:"table_totals" json:"table_totals"`
	AggregateKeywords []string          `yaml:"aggregate_keywords" json:"aggregate_keywords"`
	Results           []DocumentSummary `yaml:"results" json:"results"`
}

// DocumentSummary is one input of the batch.
type DocumentSummary struct {
	Source         string   `yaml:"source" json:"source"`
	OutputPath     string   `yaml:"output_path,omitempty" json:"output_path,omitempty"`
	ExtractionID   string   `yaml:"extraction_id,omitempty" json:"extraction_id,omitempty"`
	Status         string   `yaml:"status" json:"status"` // "success" or "error"
	ErrorType      string   `yaml:"error_type,omitempty" json:"error_type,omitempty"`
	ErrorMessage   string   `yaml:"error_message,omitempty" json:"error_message,omitempty"`
	SizeBytes      int64    `yaml:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	TableCount     int      `yaml:"table_count,omitempty" json:"table_count,omitempty"`
	SectionCount   int      `yaml:"section_count,omitempty" json:"section_count,omitempty"`
	WarningCount   int      `yaml:"warning_count,omitempty" json:"warning_count,omitempty"`
	ResortName     string   `yaml:"resort_name,omitempty" json:"resort_name,omitempty"`
	ValidityPeriod string   `yaml:"validity_period,omitempty" json:"validity_period,omitempty"`
	Language       string   `yaml:"language,omitempty" json:"language,omitempty"`
	TopKeywords    []string `yaml:"top_keywords,omitempty" json:"top_keywords,omitempty"`
}
