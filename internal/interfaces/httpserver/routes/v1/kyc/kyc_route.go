package kyc

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/kychandler"
	kycrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/kyc"
	"betline-server/services/support-api/internal/interfaces/httpserver/responses"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

type KycRoute struct {
	handler *kychandler.KycHandler
}

func NewKycRoute(handler *kychandler.KycHandler) *KycRoute {
	return &KycRoute{handler: handler}
}

func (route *KycRoute) RegisterRouter(router gin.IRouter) {
	kycGroup := router.Group("/kyc")
	kycGroup.POST("/:session_id/stages/:stage", route.runStage)
}

var validStages = map[session.KycStage]bool{
	session.KycStageFrontDocument: true,
	session.KycStageBackDocument:  true,
	session.KycStageSelfie:        true,
}

// runStage godoc
// @Summary Run a single identity verification stage
// @Description Executes the named stage against the session's verification state.
// @Description Stages must run in order: front_document, back_document, selfie.
// @Tags KYC API
// @Accept json
// @Produce json
// @Param session_id path string true "Session public ID"
// @Param stage path string true "Stage name" Enums(front_document, back_document, selfie)
// @Param request body kycrequests.StageRequest true "Stage input"
// @Success 200 {object} kycresponses.StageResponse "Stage outcome"
// @Failure 400 {object} responses.ErrorResponse "Invalid stage or request body"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Router /v1/kyc/{session_id}/stages/{stage} [post]
func (route *KycRoute) runStage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	stage := session.KycStage(reqCtx.Param("stage"))
	if !validStages[stage] {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "unknown verification stage", "1e7c4a9d-3f8b-4562-9d0a-7b5e2c8f4a63")
		return
	}

	var req kycrequests.StageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "6b9d3f7a-2e5c-4184-b8f0-4a7c9e1d6b52")
		return
	}

	resp, err := route.handler.RunStage(ctx, reqCtx.Param("session_id"), stage, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to run verification stage")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}
