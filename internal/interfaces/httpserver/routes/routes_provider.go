package routes

import (
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/chathandler"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/kychandler"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/sessionhandler"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/tickethandler"
	v1 "betline-server/services/support-api/internal/interfaces/httpserver/routes/v1"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/chat"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/kyc"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/sessions"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes/v1/tickets"

	"github.com/google/wire"
)

var RouteProvider = wire.NewSet(
	// Handlers
	chathandler.NewChatHandler,
	sessionhandler.NewSessionHandler,
	kychandler.NewKycHandler,
	tickethandler.NewTicketHandler,

	// Routes
	v1.NewV1Route,
	chat.NewChatRoute,
	sessions.NewSessionRoute,
	kyc.NewKycRoute,
	tickets.NewTicketRoute,
)
