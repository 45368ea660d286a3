package converter

import (
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func convertText(data []byte) (*models.RawDocument, error) {
	b := newBuilder()
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	for i, page := range strings.Split(s, "\f") {
		if i > 0 {
			b.pageBreak()
		}
		for _, para := range strings.Split(page, "\n\n") {
			b.text(para, "")
		}
	}
	return b.document(), nil
}
