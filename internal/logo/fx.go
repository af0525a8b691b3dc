package logo

import "go.uber.org/fx"

var Module = fx.Module("logo.resolver",
	fx.Provide(NewResolver),
)
