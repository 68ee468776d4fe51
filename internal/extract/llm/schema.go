package llm

import (
	"encoding/json"
	"fmt"

	"paperhulp/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the contract the extraction service must return. It is both
// embedded verbatim in the system prompt and enforced on every response.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["docType", "sender", "summary", "actions", "amountEUR", "deadline", "confidence"],
  "properties": {
    "docType": {
      "type": "string",
      "enum": ["BELASTING", "BOETE", "VERZEKERING", "ABONNEMENT", "OVERIG"]
    },
    "sender": {"type": ["string", "null"]},
    "summary": {"type": "string", "minLength": 1, "maxLength": 1200},
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["title", "description", "deadline"],
        "properties": {
          "title": {"type": "string", "minLength": 1, "maxLength": 200},
          "description": {"type": "string", "minLength": 1, "maxLength": 2000},
          "deadline": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
        }
      }
    },
    "amountEUR": {"type": ["number", "null"]},
    "deadline": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var compiledSchema = jsonschema.MustCompileString("extraction.json", schemaJSON)

// validateRaw checks the response bytes: structural parse first, then
// field-level schema validation. Both failure modes come back as a
// *domain.ValidationError so callers can trigger the repair round.
func validateRaw(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &domain.ValidationError{Detail: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if err := compiledSchema.Validate(v); err != nil {
		return &domain.ValidationError{Detail: err.Error()}
	}
	return nil
}
