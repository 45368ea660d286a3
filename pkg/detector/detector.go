// Package detector computes document-level signals that sit outside the
// extraction core: the narrative language and the summary block of the
// service envelope.
package detector

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/analytics"
)

// DefaultTopKeywords is the number of keywords listed in a summary.
const DefaultTopKeywords = 10

// minLanguageRunes is the shortest narrative worth running language detection on.
const minLanguageRunes = 20

// Languages found on hotel rate sheets.
var languages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Arabic,
	lingua.Chinese,
	lingua.Japanese,
}

// Detector is safe for concurrent use.
type Detector struct {
	lang        lingua.LanguageDetector
	topKeywords int
}

// New builds a detector. topKeywords <= 0 uses DefaultTopKeywords.
func New(topKeywords int) *Detector {
	if topKeywords <= 0 {
		topKeywords = DefaultTopKeywords
	}
	return &Detector{
		lang: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.1).
			Build(),
		topKeywords: topKeywords,
	}
}

// Language returns the lowercase language name of text and the detector's
// confidence in it, or ("", 0) when text is too short or ambiguous.
func (d *Detector) Language(text string) (string, float64) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minLanguageRunes {
		return "", 0
	}
	lang, ok := d.lang.DetectLanguageOf(text)
	if !ok {
		return "", 0
	}
	return strings.ToLower(lang.String()), d.lang.ComputeLanguageConfidence(text, lang)
}

// Summarize builds the summary block for a successful extraction.
func (d *Detector) Summarize(result *models.ExtractionResult) *models.Summary {
	s := &models.Summary{TableTypes: []string{}}
	if result == nil {
		return s
	}

	for _, c := range models.Categories() {
		n := len(result.TablesByType[c])
		if n == 0 {
			continue
		}
		s.TotalTables += n
		s.TableTypes = append(s.TableTypes, string(c))
	}
	s.SectionsFound = len(result.DocumentSections)
	s.HasRates = len(result.TablesByType[models.CategoryRoomRates]) > 0
	s.HasOffers = len(result.KeyInformation.SpecialOffers) > 0 || hasOfferSection(result.DocumentSections)

	s.Language, s.LanguageConfidence = d.Language(result.NarrativeText)
	s.TopKeywords = analytics.TopKeywords(analytics.WordFrequency(result.NarrativeText), d.topKeywords)

	return s
}

// hasOfferSection reports whether any section title mentions an offer.
func hasOfferSection(sections []models.DocumentSection) bool {
	for _, sec := range sections {
		if sec.Title != nil && strings.Contains(strings.ToLower(*sec.Title), "offer") {
			return true
		}
	}
	return false
}
