package pipeline

import "fmt"

// Component names used in ExtractionPartialFailure.
const (
	ComponentSeparator  = "separator"
	ComponentClassifier = "classifier"
	ComponentExtractor  = "extractor"
	ComponentSegmenter  = "segmenter"
	ComponentAssembler  = "assembler"
)

// ExtractionPartialFailure aborts a document when one stage fails. The
// stage error stays reachable through errors.As / errors.Is.
type ExtractionPartialFailure struct {
	Component string
	Cause     error
}

func (e *ExtractionPartialFailure) Error() string {
	return fmt.Sprintf("extraction failed in %s: %v", e.Component, e.Cause)
}

func (e *ExtractionPartialFailure) Unwrap() error {
	return e.Cause
}
