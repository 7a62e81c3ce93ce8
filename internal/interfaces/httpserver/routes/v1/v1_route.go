package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/chat"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/kyc"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/sessions"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/tickets"
)

type V1Route struct {
	chat     *chat.ChatRoute
	sessions *sessions.SessionRoute
	kyc      *kyc.KycRoute
	tickets  *tickets.TicketRoute
}

func NewV1Route(
	chat *chat.ChatRoute,
	sessions *sessions.SessionRoute,
	kyc *kyc.KycRoute,
	tickets *tickets.TicketRoute,
) *V1Route {
	return &V1Route{
		chat,
		sessions,
		kyc,
		tickets,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", GetReadyz)

	v1Route.chat.RegisterRouter(v1Router)
	v1Route.sessions.RegisterRouter(v1Router)
	v1Route.kyc.RegisterRouter(v1Router)
	v1Route.tickets.RegisterRouter(v1Router)
}

// GetVersion godoc
// @Summary Get API build version
// @Description Returns the current build version of the API server and environment reload timestamp.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Version information including version number and environment reload timestamp"
// @Router /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": config.GetEnvReloadedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetHealthz godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API server. Used by orchestrators and monitoring systems.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Health status OK"
// @Router /v1/healthz [get]
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadyz godoc
// @Summary Readiness check endpoint
// @Description Returns the readiness status of the API server. Indicates if the service is ready to accept traffic.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Readiness status ready"
// @Router /v1/readyz [get]
func GetReadyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
