package invoice

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pike/internal/invoice/render"
	"github.com/smallbiznis/pike/internal/invoice/service"
	"github.com/smallbiznis/pike/internal/logo"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	logo.Module,
	fx.Provide(NewSnowflakeNode),
	fx.Provide(render.NewRenderer),
	fx.Provide(func(r *logo.Resolver) service.LogoResolver { return r }),
	fx.Provide(service.NewService),
)

// NewSnowflakeNode returns the id generator for rendered documents.
func NewSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
