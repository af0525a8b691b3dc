package main

import (
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/urfave/cli/v2"
)

func settingsCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "manage invoice default settings",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "print the current settings",
				Action: action(open, getSettings),
			},
			{
				Name:  "update",
				Usage: "update only the given settings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from-address"},
					&cli.StringFlag{Name: "payment-terms"},
					&cli.StringFlag{Name: "notes"},
					&cli.StringFlag{Name: "terms"},
					&cli.StringFlag{Name: "logo-url", Usage: `URL, data URI or "storage/<key>"`},
					&cli.Float64Flag{Name: "tax-percent"},
				},
				Action: action(open, updateSettings),
			},
			{
				Name:   "reset",
				Usage:  "restore the built-in defaults",
				Action: action(open, resetSettings),
			},
		},
	}
}

func getSettings(c *cli.Context, svc *services) error {
	settings, err := svc.Settings.All(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c, settings)
}

func updateSettings(c *cli.Context, svc *services) error {
	partial := settingsdomain.Settings{}
	flags := map[string]string{
		"from-address":  settingsdomain.KeyFromAddress,
		"payment-terms": settingsdomain.KeyPaymentTerms,
		"notes":         settingsdomain.KeyNotes,
		"terms":         settingsdomain.KeyTerms,
		"logo-url":      settingsdomain.KeyLogoURL,
	}
	for flag, key := range flags {
		if c.IsSet(flag) {
			partial[key] = c.String(flag)
		}
	}
	if c.IsSet("tax-percent") {
		partial[settingsdomain.KeyTaxPercent] = c.Float64("tax-percent")
	}

	updated, err := svc.Settings.Update(c.Context, partial)
	if err != nil {
		return err
	}
	return printJSON(c, updated)
}

func resetSettings(c *cli.Context, svc *services) error {
	settings, err := svc.Settings.Reset(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c, settings)
}
