package forge

import (
	"github.com/smallbiznis/pike/internal/forge/client"
	"github.com/smallbiznis/pike/internal/forge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("forge.service",
	fx.Provide(client.New),
	fx.Provide(service.NewService),
)
