package main

import (
	"github.com/smallbiznis/pike/internal/clock"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/forge"
	"github.com/smallbiznis/pike/internal/invoice"
	"github.com/smallbiznis/pike/internal/invoicesettings"
	"github.com/smallbiznis/pike/internal/lock"
	"github.com/smallbiznis/pike/internal/observability"
	"github.com/smallbiznis/pike/internal/server"
	"github.com/smallbiznis/pike/internal/storage"
	"github.com/smallbiznis/pike/internal/tools"
	"github.com/smallbiznis/pike/pkg/redisclient"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		redisclient.Module,
		storage.Module,
		lock.Module,
		clock.Module,

		// Functional Domains
		invoicesettings.Module,
		invoice.Module,
		forge.Module,

		// Transports
		tools.Module,
		server.Module,
	)
	app.Run()
}
