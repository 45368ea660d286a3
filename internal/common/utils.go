package common

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// fieldNameMap maps verbose field names to terse equivalents.
var fieldNameMap = map[string]string{
	"success":        "ok",
	"file":           "f",
	"extracted_data": "d",
	"summary":        "sm",
	"error":          "e",
}

// FilterResultFields keeps only the requested top-level fields of result.
// An empty fieldsStr keeps everything.
func FilterResultFields(result interface{}, fieldsStr string, isTerse bool) map[string]interface{} {
	if fieldsStr == "" {
		return structToMap(result)
	}

	includeFields := make(map[string]bool)
	for _, field := range strings.Split(fieldsStr, ",") {
		field = strings.TrimSpace(field)
		if isTerse {
			if terseField, ok := fieldNameMap[field]; ok {
				field = terseField
			}
		}
		includeFields[field] = true
	}

	filtered := make(map[string]interface{})
	for key, value := range structToMap(result) {
		if includeFields[key] {
			filtered[key] = value
		}
	}
	return filtered
}

// TerseKeys renames top-level keys to their short form.
func TerseKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if short, ok := fieldNameMap[k]; ok {
			k = short
		}
		out[k] = v
	}
	return out
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// SettingsHash fingerprints everything besides the input bytes that shapes
// an extraction result. Stored results are only reused under the same hash.
func SettingsHash(rules models.Rules, readability bool, maxPages int) string {
	data, _ := json.Marshal(struct {
		Rules       models.Rules `json:"rules"`
		Readability bool         `json:"readability"`
		MaxPages    int          `json:"max_pages"`
	}{rules, readability, maxPages})
	return ContentHash(data)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeStem turns an input path into a filename stem safe for any filesystem.
// "My Rates (2025).pdf" becomes "My_Rates_2025".
func SafeStem(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = unsafeChars.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_.")
	if stem == "" {
		return "document"
	}
	return stem
}

// OutputStems assigns every input a distinct output stem. Inputs whose safe
// stems clash (case-insensitively) get their extension appended, and any
// name still taken gets a "-2", "-3"... suffix in input order.
func OutputStems(inputs []string) map[string]string {
	counts := make(map[string]int, len(inputs))
	for _, in := range inputs {
		counts[strings.ToLower(SafeStem(in))]++
	}

	stems := make(map[string]string, len(inputs))
	taken := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if _, ok := stems[in]; ok {
			continue
		}
		stem := SafeStem(in)
		if counts[strings.ToLower(stem)] > 1 {
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in), "."))
			if ext = strings.Trim(unsafeChars.ReplaceAllString(ext, "_"), "_."); ext != "" {
				stem += "_" + ext
			}
		}
		name := stem
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", stem, n)
		}
		taken[strings.ToLower(name)] = true
		stems[in] = name
	}
	return stems
}

// OutputPath returns <dir>/<stem>_extracted.<ext>.
func OutputPath(dir, stem, ext string) string {
	return filepath.Join(dir, stem+"_extracted."+ext)
}

// DedupeInputs drops blank and repeated paths, keeping first-seen order.
func DedupeInputs(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
