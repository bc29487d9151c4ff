package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigSchema returns the JSON-Schema a BILLS_CONFIG file must satisfy.
// Durations are accepted as Go duration strings ("30s", "5m").
func ConfigSchema() map[string]any {
	str := map[string]any{"type": "string"}
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	duration := map[string]any{"type": "string", "pattern": `^[0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h)([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))*$`}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"input": object(map[string]any{
				"folder":    nonEmpty,
				"extension": map[string]any{"type": "string", "pattern": `^\.[A-Za-z0-9]+$`},
				"excluded":  map[string]any{"type": "array", "items": nonEmpty},
			}),
			"output": object(map[string]any{
				"summary_csv": nonEmpty,
				"rates_csv":   nonEmpty,
				"xlsx":        str,
			}),
			"text_extract": object(map[string]any{
				"pdftotext":       nonEmpty,
				"pdftoppm":        nonEmpty,
				"tesseract":       nonEmpty,
				"tesseract_lang":  nonEmpty,
				"tessdata_dir":    str,
				"layout":          map[string]any{"type": "boolean"},
				"ocr_fallback":    map[string]any{"type": "boolean"},
				"dpi":             map[string]any{"type": "integer", "minimum": 72, "maximum": 1200},
				"min_text_chars":  map[string]any{"type": "integer", "minimum": 0},
				"command_timeout": duration,
			}),
			"archive": object(map[string]any{
				"dsn":               str,
				"max_conns":         map[string]any{"type": "integer", "minimum": 1},
				"min_conns":         map[string]any{"type": "integer", "minimum": 0},
				"max_conn_lifetime": duration,
				"dial_timeout":      duration,
			}),
			"metrics": object(map[string]any{
				"textfile_path": str,
			}),
			"log": object(map[string]any{
				"level": map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "warning", "error"}},
			}),
		},
	}
}

func object(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateAgainstSchema validates "data" against "schemaMap".
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
