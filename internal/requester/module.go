package requester

import (
	"go.uber.org/fx"
)

// Module provides the outbound HTTP requester
var Module = fx.Module("requester",
	fx.Provide(NewHTTPRequester),
)
