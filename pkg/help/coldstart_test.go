package help

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestColdstartYAMLIsValid(t *testing.T) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(ColdstartYAML), &doc); err != nil {
		t.Fatalf("ColdstartYAML is not valid YAML: %v", err)
	}
	for _, key := range []string{"input_formats", "commands", "table_types", "error_behavior"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("ColdstartYAML missing %q", key)
		}
	}
}
