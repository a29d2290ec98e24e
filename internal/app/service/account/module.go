package account

import "go.uber.org/fx"

// Module exposes the account service and token issuer via Fx.
var Module = fx.Options(
	fx.Provide(NewTokens),
	fx.Provide(NewService),
)
