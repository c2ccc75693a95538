package ai

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const entailmentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["label", "score"],
  "properties": {
    "label": {"type": "string", "minLength": 1},
    "score": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

var entailmentSchema = jsonschema.MustCompileString("entailment.schema.json", entailmentSchemaJSON)

// parseEntailmentJSON validates a model's JSON answer before trusting its label and score.
func parseEntailmentJSON(content []byte) (Entailment, error) {
	var raw interface{}
	if err := decodeJSON(content, &raw); err != nil {
		return Entailment{}, err
	}
	if err := entailmentSchema.Validate(raw); err != nil {
		return Entailment{}, fmt.Errorf("%w: %v", ErrUnparseableOutput, err)
	}

	var payload struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := decodeJSON(content, &payload); err != nil {
		return Entailment{}, err
	}

	label, err := ParseLabel(payload.Label)
	if err != nil {
		return Entailment{}, err
	}

	return Entailment{Label: label, Score: payload.Score}, nil
}
