//go:build wireinject

package main

import (
	"betline-server/services/support-api/internal/domain"
	"betline-server/services/support-api/internal/infrastructure"
	"betline-server/services/support-api/internal/interfaces"
	"betline-server/services/support-api/internal/interfaces/httpserver/routes"

	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
