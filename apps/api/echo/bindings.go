package echoapi

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/veza-labs/worksim/core/simulation"
)

type (
	// SubmitRequest is the JSON body for free-form and multiple-choice
	// submissions. File-upload tasks use multipart/form-data instead.
	SubmitRequest struct {
		Payload json.RawMessage `json:"payload" validate:"required"`
	}

	SubmitResponse struct {
		Success     bool                    `json:"success"`
		Submission  simulation.Submission   `json:"submission"`
		ScoreResult *simulation.ScoreResult `json:"score_result,omitempty"`
		Progress    simulation.Progress     `json:"progress"`
		Certificate *simulation.Certificate `json:"certificate,omitempty"`
	}

	CompleteResponse struct {
		Success     bool                   `json:"success"`
		Certificate simulation.Certificate `json:"certificate"`
	}
)

func (sr *SubmitRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
