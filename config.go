package proxysdk

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ConfigValidationError represents errors that occur while validating a
// plugin configuration against its JSON schema.
type ConfigValidationError struct {
	Type    string   `json:"type"`
	Details string   `json:"details"`
	Issues  []string `json:"issues,omitempty"`
}

func (e *ConfigValidationError) Error() string {
	if len(e.Issues) > 0 {
		return fmt.Sprintf("configuration validation failed: %s\n%s", e.Details, strings.Join(e.Issues, "\n"))
	}
	return fmt.Sprintf("configuration validation failed: %s", e.Details)
}

// ConfigSchema validates plugin configuration bytes against a JSON Schema
// Draft-7 document. The schema is compiled once at construction.
type ConfigSchema struct {
	schema *gojsonschema.Schema
}

// NewConfigSchema compiles a JSON schema for configuration validation.
func NewConfigSchema(schema string) (*ConfigSchema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, &ConfigValidationError{
			Type:    "SchemaCompilation",
			Details: fmt.Sprintf("failed to compile schema: %v", err),
		}
	}
	return &ConfigSchema{schema: compiled}, nil
}

// MustConfigSchema is NewConfigSchema for schemas known at compile time;
// it panics on a bad schema.
func MustConfigSchema(schema string) *ConfigSchema {
	compiled, err := NewConfigSchema(schema)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Validate checks configuration bytes against the schema.
func (s *ConfigSchema) Validate(configuration []byte) error {
	if len(configuration) == 0 {
		configuration = []byte("{}")
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(configuration))
	if err != nil {
		return &ConfigValidationError{
			Type:    "InvalidJson",
			Details: fmt.Sprintf("configuration is not valid JSON: %v", err),
		}
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, fmt.Sprintf("  - %s", desc))
		}
		return &ConfigValidationError{
			Type:    "ConfigValidation",
			Details: "configuration does not match schema",
			Issues:  issues,
		}
	}
	return nil
}

// Parse validates configuration bytes and unmarshals them into out.
// Intended for use from OnConfigure; return false to the host when it
// fails.
func (s *ConfigSchema) Parse(configuration []byte, out any) error {
	if err := s.Validate(configuration); err != nil {
		return err
	}
	if len(configuration) == 0 {
		return nil
	}
	if err := json.Unmarshal(configuration, out); err != nil {
		return &ConfigValidationError{
			Type:    "InvalidJson",
			Details: fmt.Sprintf("failed to unmarshal configuration: %v", err),
		}
	}
	return nil
}
