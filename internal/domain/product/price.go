package product

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParsePrice converts a display price such as "$2,999" or "USD 1,234.00" to a
// decimal. Every character outside [0-9.] is dropped and the longest leading
// number is read, so "1.2.3" parses as 1.2. Input without digits yields zero.
func ParsePrice(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	var (
		end    int
		digits int
		dot    bool
	)
	for ; end < len(cleaned); end++ {
		if cleaned[end] == '.' {
			if dot {
				break
			}
			dot = true
			continue
		}
		digits++
	}
	if digits == 0 {
		return decimal.Zero
	}

	num := strings.TrimSuffix(cleaned[:end], ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	v, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// FormatPrice renders a price in US dollars with thousands separators.
// Whole amounts omit cents: 2999 becomes "$2,999", 0.01 becomes "$0.01".
func FormatPrice(d decimal.Decimal) string {
	p := message.NewPrinter(language.English)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := p.Sprintf("%d", d.IntPart())
	if d.Equal(d.Truncate(0)) {
		return "$" + sign + whole
	}

	fixed := d.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.'):]
	return "$" + sign + whole + frac
}
