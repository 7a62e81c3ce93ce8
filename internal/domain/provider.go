package domain

import (
	"github.com/google/wire"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/domain/router"
	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/domain/ticket"
)

// ProvideTicketService binds the product-tuned local id width from config.
func ProvideTicketService(gateway *extraction.Gateway, ledger ticket.LedgerRepository, cfg *config.Config) *ticket.Service {
	return ticket.NewService(gateway, ledger, cfg.TicketLocalIDWidth)
}

// ProvideKycService binds the face match threshold from config.
func ProvideKycService(sessions *session.Service, players kyc.PlayerRepository, gateway *extraction.Gateway, cfg *config.Config) *kyc.Service {
	return kyc.NewService(sessions, players, gateway, cfg.FaceMatchThreshold)
}

// ServiceProvider wires all domain services.
var ServiceProvider = wire.NewSet(
	session.NewService,
	ProvideTicketService,
	ProvideKycService,
	router.NewService,
	wire.Bind(new(router.TicketResolver), new(*ticket.Service)),
	wire.Bind(new(router.KycRunner), new(*kyc.Service)),
	wire.Bind(new(router.ExtractionGateway), new(*extraction.Gateway)),
)
