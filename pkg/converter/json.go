package converter

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

const rawDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "source": {"type": "string"},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["blocks"],
        "properties": {
          "number": {"type": "integer", "minimum": 0},
          "blocks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {
                "type": {"enum": ["text", "table"]},
                "content": {"type": "string"},
                "label": {"type": "string"},
                "rows": {
                  "type": "array",
                  "items": {"type": "array", "items": {"type": "string"}}
                },
                "bbox": {
                  "type": "array",
                  "items": {"type": "number"},
                  "minItems": 4,
                  "maxItems": 4
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func rawSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("raw_document.json", strings.NewReader(rawDocumentSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("raw_document.json")
	})
	return schema, schemaErr
}

// ValidateRaw checks data against the RawDocument JSON schema.
func ValidateRaw(data []byte) error {
	sch, err := rawSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse raw document: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("raw document does not match schema: %w", err)
	}
	return nil
}

func convertJSON(data []byte) (*models.RawDocument, error) {
	if err := ValidateRaw(data); err != nil {
		return nil, err
	}
	var doc models.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode raw document: %w", err)
	}
	return &doc, nil
}
