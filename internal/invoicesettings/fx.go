package invoicesettings

import (
	"github.com/smallbiznis/pike/internal/invoicesettings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicesettings.service",
	fx.Provide(service.NewService),
)
