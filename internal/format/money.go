// Package format turns raw wallet amounts and payment records into display
// strings and style tokens. Every function is pure.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vi13x/sats-wallet/internal/domain"
)

const (
	SatsLabel = "sats"

	// fiatDecimals is the maximum number of fraction digits shown for fiat.
	fiatDecimals = 2
)

var (
	printer = message.NewPrinter(language.AmericanEnglish)

	satsPerBTC = decimal.NewFromInt(domain.SatsPerBTC)
)

// DefaultRate is the USD price of one bitcoin used when no rate is configured.
var DefaultRate = decimal.NewFromInt(29_000)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"RUB": "₽",
	"KZT": "₸",
}

// Symbol returns the display symbol of an ISO 4217 code. Unknown codes are
// shown as the code followed by a space.
func Symbol(code string) string {
	code = strings.ToUpper(code)
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// ToFiat converts sats to fiat at rate (fiat per whole bitcoin). No rounding.
func ToFiat(sats domain.Sats, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(sats)).Mul(rate).Div(satsPerBTC)
}

// FormatSats renders n with thousands separators, e.g. "21,763 sats".
func FormatSats(n domain.Sats) string {
	return printer.Sprintf("%d %s", int64(n), SatsLabel)
}

// FormatFiat renders v prefixed with symbol, grouped, with at most two
// fraction digits rounded half away from zero: 6.31127 -> "$6.31".
func FormatFiat(symbol string, v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	v = v.Round(fiatDecimals)
	out := printer.Sprintf("%d", v.IntPart())
	if _, frac, ok := strings.Cut(v.StringFixed(fiatDecimals), "."); ok {
		if frac = strings.TrimRight(frac, "0"); frac != "" {
			out += "." + frac
		}
	}
	return sign + symbol + out
}

// SignPrefix is "+" for money received and "-" for money sent.
func SignPrefix(d domain.Direction) string {
	if d == domain.Inbound {
		return "+"
	}
	return "-"
}

// Formatter binds a display currency and its rate.
type Formatter struct {
	Currency string
	Rate     decimal.Decimal
}

func NewFormatter(currency string, rate decimal.Decimal) Formatter {
	return Formatter{Currency: strings.ToUpper(currency), Rate: rate}
}

func (f Formatter) Fiat(sats domain.Sats) string {
	return FormatFiat(Symbol(f.Currency), ToFiat(sats, f.Rate))
}

// PaymentAmounts returns the signed sats and fiat strings of an activity row,
// e.g. "+1,706,950 sats" and "+$495.02".
func (f Formatter) PaymentAmounts(p domain.Payment) (sats, fiat string) {
	s := p.AmountMsat.Sats()
	sign := SignPrefix(p.Direction)
	return sign + FormatSats(s), sign + f.Fiat(s)
}
