package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	mimage "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/smallbiznis/pike/internal/invoice/domain"
	"github.com/smallbiznis/pike/internal/invoice/format"
)

const lineHeight = 4.5

type section struct {
	title string
	body  string
}

// Input is everything the renderer places on the page.
type Input struct {
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Computation   invoicedomain.Computation
	Logo          []byte
}

type Renderer interface {
	Render(ctx context.Context, input Input) ([]byte, error)
}

// PDFRenderer lays out invoices with maroto.
type PDFRenderer struct{}

func NewRenderer() Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := in.Computation

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	if logo := logoCol(in.Logo); logo != nil {
		m.AddRow(30, logo, col.New(9))
	}

	m.AddRow(12,
		text.NewCol(6, "INVOICE", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(6, "# "+in.InvoiceNumber, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 3}),
	)

	meta := [][2]string{{"Date", format.Date(in.IssueDate)}}
	if c.PaymentTerms != "" {
		meta = append(meta, [2]string{"Payment Terms", c.PaymentTerms})
	}
	meta = append(meta, [2]string{"Due Date", format.Date(in.DueDate)})
	if c.PurchaseOrder != "" {
		meta = append(meta, [2]string{"PO Number", c.PurchaseOrder})
	}
	for _, kv := range meta {
		m.AddRow(6,
			col.New(6),
			text.NewCol(3, kv[0], props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(3, kv[1], props.Text{Size: 9, Align: align.Right}),
		)
	}

	addressCols := []section{{"From", c.FromAddress}, {"Bill To", c.BillToAddress}}
	if c.ShipToAddress != "" {
		addressCols = append(addressCols, section{"Ship To", c.ShipToAddress})
	}
	maxLines := 1
	cols := make([]core.Col, 0, 3)
	for _, a := range addressCols {
		lines := splitLines(a.body)
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
		cols = append(cols, textBlock(4, a.title, lines))
	}
	for len(cols) < 3 {
		cols = append(cols, col.New(4))
	}
	m.AddRow(float64(maxLines+1)*lineHeight+8, cols...)

	header := props.Text{Style: fontstyle.Bold, Size: 9}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(6, "Description", header),
		text.NewCol(2, "Quantity", headerRight),
		text.NewCol(2, "Rate", headerRight),
		text.NewCol(2, "Amount", headerRight),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, item := range c.LineItems {
		m.AddRow(7,
			text.NewCol(6, item.Description, cell),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), cellRight),
			text.NewCol(2, format.Money(item.Rate), cellRight),
			text.NewCol(2, format.Money(item.Amount), cellRight),
		)
	}
	m.AddRow(2, line.NewCol(12))

	totals := [][2]string{{"Subtotal", format.Money(c.Subtotal)}}
	if c.TaxPercent.IsPositive() {
		totals = append(totals, [2]string{"Tax (" + format.Percent(c.TaxPercent) + "%)", format.Money(c.TaxAmount)})
	}
	if c.Discount.IsPositive() {
		totals = append(totals, [2]string{"Discount", "-" + format.Money(c.Discount)})
	}
	if c.Shipping.IsPositive() {
		totals = append(totals, [2]string{"Shipping", format.Money(c.Shipping)})
	}
	totals = append(totals, [2]string{"Total", format.Money(c.Total)})
	if c.AmountPaid.IsPositive() {
		totals = append(totals, [2]string{"Amount Paid", "-" + format.Money(c.AmountPaid)})
	}
	for _, kv := range totals {
		m.AddRow(6,
			col.New(8),
			text.NewCol(2, kv[0], cell),
			text.NewCol(2, kv[1], cellRight),
		)
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Balance Due", props.Text{Size: 10, Style: fontstyle.Bold, Top: 1}),
		text.NewCol(2, format.Money(c.BalanceDue), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Top: 1}),
	)

	for _, block := range []section{{"Notes", c.Notes}, {"Terms", c.Terms}} {
		if strings.TrimSpace(block.body) == "" {
			continue
		}
		lines := splitLines(block.body)
		m.AddRow(float64(len(lines)+1)*lineHeight+6, textBlock(12, block.title, lines))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", invoicedomain.ErrRenderFailed, err)
	}
	return doc.GetBytes(), nil
}

// textBlock stacks a bold title over one text component per line.
func textBlock(size int, title string, lines []string) core.Col {
	c := col.New(size)
	c.Add(text.New(title, props.Text{Size: 9, Style: fontstyle.Bold, Top: 4}))
	for i, l := range lines {
		c.Add(text.New(l, props.Text{Size: 9, Top: 4 + float64(i+1)*lineHeight}))
	}
	return c
}

func splitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// logoCol returns an image column for PNG or JPEG data; other formats are skipped.
func logoCol(data []byte) core.Col {
	if len(data) == 0 {
		return nil
	}
	_, kind, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	var ext extension.Type
	switch kind {
	case "png":
		ext = extension.Png
	case "jpeg":
		ext = extension.Jpg
	default:
		return nil
	}
	return mimage.NewFromBytesCol(3, data, ext, props.Rect{Center: false, Percent: 80})
}

// SupportsLogo reports whether data would be placed on the page.
func SupportsLogo(data []byte) bool {
	return logoCol(data) != nil
}

var _ Renderer = (*PDFRenderer)(nil)
