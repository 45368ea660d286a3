package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func TestLanguage(t *testing.T) {
	d := New(0)

	lang, conf := d.Language("The resort offers a complimentary breakfast and a seaplane transfer to every guest staying seven nights or longer.")
	assert.Equal(t, "english", lang)
	assert.Greater(t, conf, 0.0)

	lang, conf = d.Language("Rates")
	assert.Empty(t, lang)
	assert.Zero(t, conf)
}

func TestSummarize(t *testing.T) {
	d := New(3)

	result := &models.ExtractionResult{
		KeyInformation: models.KeyInformation{SpecialOffers: []string{"Free Breakfast Included"}},
		TablesByType: map[models.Category][]models.ClassifiedTable{
			models.CategoryTransport: {{ID: 1}},
			models.CategoryRoomRates: {{ID: 0}, {ID: 2}},
		},
		NarrativeText: "Villa guests enjoy the lagoon. Every villa has a private pool and lagoon views, and the villa butler arranges dinners.",
		DocumentSections: []models.DocumentSection{
			{Type: "general"}, {Type: "rates"},
		},
	}

	s := d.Summarize(result)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.TotalTables)
	assert.Equal(t, []string{"room_rates", "transport"}, s.TableTypes)
	assert.Equal(t, 2, s.SectionsFound)
	assert.True(t, s.HasRates)
	assert.True(t, s.HasOffers)
	assert.Equal(t, "english", s.Language)
	require.Len(t, s.TopKeywords, 3)
	assert.Equal(t, "villa:3", s.TopKeywords[0])
	assert.Equal(t, "lagoon:2", s.TopKeywords[1])
}

func TestSummarize_OfferSection(t *testing.T) {
	title := "Special Offers 2025"
	result := &models.ExtractionResult{
		DocumentSections: []models.DocumentSection{{Type: "general"}, {Title: &title, Type: "offers"}},
	}
	assert.True(t, New(0).Summarize(result).HasOffers)

	other := "Transfers"
	result.DocumentSections[1].Title = &other
	assert.False(t, New(0).Summarize(result).HasOffers)
}

func TestSummarize_Empty(t *testing.T) {
	s := New(0).Summarize(&models.ExtractionResult{})
	assert.Zero(t, s.TotalTables)
	assert.Empty(t, s.TableTypes)
	assert.NotNil(t, s.TableTypes)
	assert.False(t, s.HasRates)
	assert.False(t, s.HasOffers)
	assert.Empty(t, s.Language)
	assert.Empty(t, s.TopKeywords)
}
