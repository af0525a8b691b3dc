package main

import (
	"encoding/json"
	"fmt"
	"os"

	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	"github.com/urfave/cli/v2"
)

func invoiceCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "invoice",
		Usage: "generate invoice documents",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "render an invoice request (JSON) into a PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "JSON invoice request"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "PDF destination"},
				},
				Action: action(open, generateInvoice),
			},
		},
	}
}

func generateInvoice(c *cli.Context, svc *services) error {
	raw, err := readFile(c.String("input"))
	if err != nil {
		return err
	}

	var req invoicedomain.GenerateRequest
	if err := json.Unmarshal([]byte(*raw), &req); err != nil {
		return fmt.Errorf("decode %s: %w", c.String("input"), err)
	}

	doc, err := svc.Invoices.Generate(c.Context, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String("out"), doc.Content, 0o644); err != nil {
		return err
	}

	printf(c, "Invoice %s written to %s (%d bytes, total %s)\n",
		doc.InvoiceNumber, c.String("out"), len(doc.Content), doc.Computation.Total.String())
	return nil
}
