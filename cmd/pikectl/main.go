package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smallbiznis/pike/internal/clock"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/forge"
	forgedomain "github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/smallbiznis/pike/internal/invoice"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	"github.com/smallbiznis/pike/internal/invoicesettings"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/lock"
	"github.com/smallbiznis/pike/internal/observability"
	"github.com/smallbiznis/pike/internal/storage"
	"github.com/smallbiznis/pike/pkg/redisclient"
	"go.uber.org/fx"
)

func main() {
	if err := newApp(openServices).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openServices starts the domain graph without any transport. Logs go to
// stderr so stdout stays clean for command output.
func openServices(ctx context.Context) (*services, func(), error) {
	svc := &services{}
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		redisclient.Module,
		storage.Module,
		lock.Module,
		clock.Module,
		invoicesettings.Module,
		invoice.Module,
		forge.Module,
		fx.Decorate(func(cfg observability.Config) observability.Config {
			cfg.LogOutput = "stderr"
			return cfg
		}),
		fx.Invoke(func(f forgedomain.Service, s settingsdomain.Service, i invoicedomain.Service) {
			svc.Forge = f
			svc.Settings = s
			svc.Invoices = i
		}),
	)
	if err := app.Start(ctx); err != nil {
		return nil, nil, err
	}

	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}
	return svc, stop, nil
}
