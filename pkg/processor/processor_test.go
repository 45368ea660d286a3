package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/converter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/filter"
)

const ratesMarkdown = "# Resort XYZ\n\n" +
	"Valid from Jan 1 to Mar 31, 2025. Free Breakfast Included for every villa guest.\n\n" +
	"| Room | Rate USD |\n|------|------|\n| Deluxe | 200 |\n| Suite | 400 |\n\n" +
	"| Mode | Adult |\n|------|------|\n| Seaplane | 700 |\n"

func TestProcess_Success(t *testing.T) {
	p := New(Config{})

	out := p.Process(context.Background(), converter.FormatMarkdown, []byte(ratesMarkdown), "rates.md")
	require.NoError(t, out.Err)
	require.True(t, out.Response.Success)
	assert.Equal(t, "rates.md", out.Response.File)

	data := out.Response.ExtractedData
	require.NotNil(t, data)
	require.NotNil(t, data.KeyInformation.ResortName)
	assert.Equal(t, "Resort XYZ", *data.KeyInformation.ResortName)
	assert.Len(t, data.TablesByType[models.CategoryRoomRates], 1)
	assert.Len(t, data.TablesByType[models.CategoryTransport], 1)

	require.NotNil(t, out.Response.Summary)
	assert.Equal(t, 2, out.Response.Summary.TotalTables)
	assert.True(t, out.Response.Summary.HasRates)
	assert.Positive(t, out.WordCounts["villa"])
}

func TestProcess_Filter(t *testing.T) {
	s, err := filter.ParseStrategy("type:transport")
	require.NoError(t, err)
	p := New(Config{Filter: s})

	out := p.Process(context.Background(), converter.FormatMarkdown, []byte(ratesMarkdown), "rates.md")
	require.True(t, out.Response.Success)
	assert.Len(t, out.Response.ExtractedData.TablesByType, 1)
	// The summary describes the whole document, not the filtered view.
	assert.Equal(t, 2, out.Response.Summary.TotalTables)

	require.NotNil(t, out.Stored.ExtractedData)
	assert.Len(t, out.Stored.ExtractedData.TablesByType, 2)

	resp := New(Config{}).Respond("rates.md", out.Stored.ExtractedData)
	assert.True(t, resp.Success)
	assert.Len(t, resp.ExtractedData.TablesByType, 2)
	resp = p.Respond("rates.md", out.Stored.ExtractedData)
	assert.Len(t, resp.ExtractedData.TablesByType, 1)
}

func TestProcess_Failures(t *testing.T) {
	p := New(Config{})

	tests := []struct {
		name     string
		format   converter.Format
		body     string
		wantType string
	}{
		{"invalid json", converter.FormatJSON, `{"pages":`, ErrorTypeConversion},
		{"ragged table", converter.FormatJSON, `{"pages":[{"blocks":[{"type":"table","rows":[["a","b"],["c"]]}]}]}`, ErrorTypeInput},
		{"unsupported", converter.Format("docx"), "x", ErrorTypeConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Process(context.Background(), tt.format, []byte(tt.body), "in")
			require.Error(t, out.Err)
			assert.False(t, out.Response.Success)
			assert.NotEmpty(t, out.Response.Error)
			assert.Nil(t, out.Response.ExtractedData)
			assert.Equal(t, tt.wantType, out.ErrorType)
		})
	}
}
