package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	forgedomain "github.com/smallbiznis/pike/internal/forge/domain"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/urfave/cli/v2"
)

var (
	errMissingArgument = errors.New("missing_argument")
	errFileNotFound    = errors.New("file_not_found")
)

type services struct {
	Forge    forgedomain.Service
	Settings settingsdomain.Service
	Invoices invoicedomain.Service
}

type opener func(ctx context.Context) (*services, func(), error)

func newApp(open opener) *cli.App {
	return &cli.App{
		Name:  "pikectl",
		Usage: "manage invoices and Forge sites from the command line",
		Commands: []*cli.Command{
			forgeCommand(open),
			settingsCommand(open),
			invoiceCommand(open),
		},
	}
}

// action opens the service graph for the duration of a single command.
func action(open opener, fn func(c *cli.Context, svc *services) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, closeFn, err := open(c.Context)
		if err != nil {
			return err
		}
		if closeFn != nil {
			defer closeFn()
		}
		return fn(c, svc)
	}
}

func siteIDArg(c *cli.Context) (int64, error) {
	raw := strings.TrimSpace(c.Args().First())
	if raw == "" {
		return 0, fmt.Errorf("%w: site_id", errMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", forgedomain.ErrInvalidSiteID, raw)
	}
	return id, nil
}

func requiredArg(c *cli.Context, index int, name string) (string, error) {
	value := strings.TrimSpace(c.Args().Get(index))
	if value == "" {
		return "", fmt.Errorf("%w: %s", errMissingArgument, name)
	}
	return value, nil
}

// readFile returns the file contents, or nil when path is empty.
func readFile(path string) (*string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errFileNotFound, path)
		}
		return nil, err
	}
	content := string(raw)
	return &content, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}
