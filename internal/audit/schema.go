package audit

import (
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

// anyValue accepts every JSON value. Metric fields that are not finite
// numbers are read as missing data, not rejected.
var anyValue = map[string]any{}

// recordSchemaDef describes a per-run audit file. Unknown fields are allowed.
var recordSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"model": map[string]any{"type": []string{"string", "null"}},
		"providers": map[string]any{
			"type": []string{"object", "null"},
			"additionalProperties": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"exact_match_rate":     anyValue,
					"avg_prob":             anyValue,
					"avg_margin":           anyValue,
					"avg_logit_rank":       anyValue,
					"avg_gumbel_rank":      anyValue,
					"infinite_margin_rate": anyValue,
					"total_tokens":         anyValue,
					"n_sequences":          anyValue,
				},
			},
		},
	},
}

var recordSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(recordSchemaDef))
})

// ValidateDocument checks data against schema and returns a single error
// listing every violation.
func ValidateDocument(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return eris.Wrap(err, "schema validation failed")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return eris.New(strings.Join(msgs, "; "))
}

func validateRecord(data []byte) error {
	schema, err := recordSchema()
	if err != nil {
		return eris.Wrap(err, "compile audit record schema")
	}
	return ValidateDocument(schema, data)
}
