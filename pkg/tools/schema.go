package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// findBikeParkingSchema mirrors FindBikeParkingTool. The mcp-go builder has
// no way to express an exact array length, so the schema carries it.
var findBikeParkingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"location": map[string]any{"type": "string"},
		"coordinates": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "number"},
			"minItems": 4,
			"maxItems": 4,
		},
	},
	"required": []string{"location"},
}

var getBikeInfoSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query":             map[string]any{"type": "string"},
		"frame_model":       map[string]any{"type": "string"},
		"title":             map[string]any{"type": "string"},
		"manufacturer_name": map[string]any{"type": "string"},
		"stolen":            map[string]any{"type": "boolean"},
		"location":          map[string]any{"type": "string"},
		"stolenness": map[string]any{
			"type": "string",
			"enum": []string{"all", "non", "stolen", "proximity"},
		},
		"distance": map[string]any{"type": "string"},
		"page":     map[string]any{"type": "integer", "minimum": 1},
		"per_page": map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
	},
	"required": []string{"query"},
}

// ValidateArguments checks raw tool arguments against a JSON schema.
func ValidateArguments(schema map[string]any, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("invalid arguments: %s", strings.Join(errs, ", "))
}
