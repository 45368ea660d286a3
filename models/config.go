package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ExtractConfig holds runtime configuration for the extract command.
// Values come from CLI flags; Rules optionally comes from a YAML file.
type ExtractConfig struct {
	Inputs      []string
	WorkerCount int
	OutputDir   string
	Rules       Rules
}

// Rules overrides the built-in heuristics. Zero values keep the defaults.
type Rules struct {
	Signatures  []SignatureRule `yaml:"signatures,omitempty" validate:"omitempty,dive"`
	LeadingRows int             `yaml:"leading_rows,omitempty" validate:"gte=0,lte=100"`
	PageGap     *int            `yaml:"page_gap,omitempty" validate:"omitempty,gte=0"`
	FormatText  *bool           `yaml:"format_text,omitempty"`
	Headings    HeadingRules    `yaml:"headings,omitempty"`
	Windows     map[string]int  `yaml:"windows,omitempty" validate:"omitempty,dive,keys,oneof=resort_name validity_period currency special_offers,endkeys,gt=0"`
}

// SignatureRule is one (category, keywords) pair. Declaration order is precedence.
type SignatureRule struct {
	Category string   `yaml:"category" validate:"required,oneof=room_rates meal_plans transport"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// HeadingRules tunes the heading heuristic of the segmenter.
type HeadingRules struct {
	MaxRunes int `yaml:"max_runes,omitempty" validate:"gte=0"`
	MaxWords int `yaml:"max_words,omitempty" validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the rules against their struct constraints.
func (r *Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}

// LoadRules reads and validates a YAML rules file.
func LoadRules(path string) (Rules, error) {
	var rules Rules
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}
