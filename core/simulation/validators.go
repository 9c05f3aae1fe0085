package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
)

var errBadAnswerPayload = errors.New("answers must be an array, or an object with an \"answers\" array")

type answersEnvelope struct {
	Answers []interface{} `json:"answers"`
}

// NormalizeAnswers accepts the two payload shapes clients send for
// multiple-choice tasks — a bare JSON array, or `{"answers": [...]}` — and
// normalizes both to a string slice. Anything else fails validation; the
// ambiguity is resolved here and never propagates into scoring.
func NormalizeAnswers(payload json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, core.NewValidationError(errBadAnswerPayload, core.FieldError{Field: "answers", Error: "this field is required"})
	}

	var raw []interface{}
	switch trimmed[0] {
	case '[':
		if err := decodeJSON(trimmed, &raw); err != nil {
			return nil, core.NewValidationError(errBadAnswerPayload)
		}
	case '{':
		var env answersEnvelope
		if err := decodeJSON(trimmed, &env); err != nil || env.Answers == nil {
			return nil, core.NewValidationError(errBadAnswerPayload, core.FieldError{Field: "answers", Error: "this field is required"})
		}
		raw = env.Answers
	default:
		return nil, core.NewValidationError(errBadAnswerPayload)
	}

	answers := make([]string, 0, len(raw))
	for _, a := range raw {
		answers = append(answers, coerceAnswer(a))
	}
	return answers, nil
}

func decodeJSON(data []byte, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // keep "2" as 2, not 2.000000
	return dec.Decode(dest)
}

// coerceAnswer renders a single answer as a string for comparison against
// the item's correct choice.
func coerceAnswer(a interface{}) string {
	switch v := a.(type) {
	case nil:
		return ""
	case string:
		return core.CleanString(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
