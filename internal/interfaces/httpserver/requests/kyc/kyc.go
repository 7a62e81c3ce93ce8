package kyc

// StageRequest is the body of POST /v1/kyc/:session_id/stages/:stage.
type StageRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	ImageURL  string `json:"image_url" binding:"required"`
}
