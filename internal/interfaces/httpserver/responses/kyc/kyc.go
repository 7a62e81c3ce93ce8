package kyc

import (
	"betline-server/services/support-api/internal/domain/kyc"
)

// StageResponse is the outcome of one verification stage attempt.
type StageResponse struct {
	Success bool     `json:"success"`
	Stage   string   `json:"stage"`
	Errors  []string `json:"errors,omitempty"`
	Reply   string   `json:"reply"`
}

func NewStageResponse(result kyc.StageResult) *StageResponse {
	return &StageResponse{
		Success: result.Success,
		Stage:   string(result.Stage),
		Errors:  result.Errors,
		Reply:   result.Reply,
	}
}
