package graph

import (
	"go.uber.org/fx"
)

// Module provides graph domain dependencies.
var Module = fx.Module("graph",
	fx.Provide(
		fx.Annotate(
			NewRepository,
			fx.As(new(Store)),
		),
	),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
