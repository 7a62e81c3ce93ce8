package kychandler

import (
	"context"

	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/domain/session"
	kycrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/kyc"
	kycresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/kyc"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// KycHandler handles identity verification HTTP requests
type KycHandler struct {
	kycService     *kyc.Service
	sessionService *session.Service
}

// NewKycHandler creates a new KYC handler
func NewKycHandler(kycService *kyc.Service, sessionService *session.Service) *KycHandler {
	return &KycHandler{kycService: kycService, sessionService: sessionService}
}

// RunStage executes a single named verification stage against a session.
// Out-of-order stages are refused by the service.
func (h *KycHandler) RunStage(
	ctx context.Context,
	sessionPublicID string,
	stage session.KycStage,
	req kycrequests.StageRequest,
) (*kycresponses.StageResponse, error) {
	sess, err := h.sessionService.GetByPublicID(ctx, sessionPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get session")
	}

	result := h.kycService.RunStage(ctx, sess, req.AccountID, stage, req.ImageURL)
	return kycresponses.NewStageResponse(result), nil
}
