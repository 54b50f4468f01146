package hubspot

import "go.uber.org/fx"

// Module provides the contacts client
var Module = fx.Module("hubspot",
	fx.Provide(NewClient),
)
