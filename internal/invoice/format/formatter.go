package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "01/02/2006"

// Money renders an amount as US dollars rounded to cents, e.g. "$1,234.50" or "-$5.00".
func Money(amount decimal.Decimal) string {
	sign := ""
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	fixed := rounded.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// Percent renders a percentage without trailing zeros, e.g. "8.25".
func Percent(p decimal.Decimal) string {
	return p.String()
}

// Date renders a calendar date as MM/DD/YYYY.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
