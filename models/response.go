package models

// Response is the service-layer envelope around an extraction.
type Response struct {
	Success       bool              `json:"success" yaml:"success"`
	File          string            `json:"file,omitempty" yaml:"file,omitempty"`
	ExtractedData *ExtractionResult `json:"extracted_data,omitempty" yaml:"extracted_data,omitempty"`
	Summary       *Summary          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary carries document-level statistics computed outside the core.
type Summary struct {
	TotalTables        int      `json:"total_tables" yaml:"total_tables"`
	TableTypes         []string `json:"table_types" yaml:"table_types"`
	SectionsFound      int      `json:"sections_found" yaml:"sections_found"`
	HasRates           bool     `json:"has_rates" yaml:"has_rates"`
	HasOffers          bool     `json:"has_offers" yaml:"has_offers"`
	Language           string   `json:"language,omitempty" yaml:"language,omitempty"`
	LanguageConfidence float64  `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`
	TopKeywords        []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}

// NewSuccessResponse wraps a result.
func NewSuccessResponse(file string, result *ExtractionResult, summary *Summary) Response {
	return Response{
		Success:       true,
		File:          file,
		ExtractedData: result,
		Summary:       summary,
	}
}

// NewErrorResponse builds the failure envelope. Only the message is exposed.
func NewErrorResponse(err error) Response {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response{Success: false, Error: msg}
}
