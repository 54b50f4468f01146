package auth

import (
	"github.com/brizzai/hubspot-connect/internal/auth/providers"
	"go.uber.org/fx"
)

// Module provides the HubSpot provider and the handshake service
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			providers.NewHubSpotProvider,
			fx.As(new(providers.Provider)),
		),
		NewService,
	),
)
