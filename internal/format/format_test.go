package format_test

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/shopspring/decimal"

	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/format"
	"github.com/vi13x/sats-wallet/internal/keypad"
)

var zone = time.FixedZone("UTC+3", 3*60*60)

func TestToFiat(t *testing.T) {
	t.Parallel()

	t.Run("ZeroForAnyRate", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		for _, r := range []int64{0, 1, 29_000, 1_000_000} {
			i.True(format.ToFiat(0, decimal.NewFromInt(r)).IsZero())
		}
	})

	t.Run("NoRounding", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		got := format.ToFiat(21_763, format.DefaultRate)
		i.True(got.Equal(decimal.RequireFromString("6.31127")))
	})
}

func TestFormatSats(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	i.Equal("0 sats", format.FormatSats(0))
	i.Equal("999 sats", format.FormatSats(999))
	i.Equal("21,763 sats", format.FormatSats(21_763))
	i.Equal("1,706,950 sats", format.FormatSats(1_706_950))
}

func TestFormatFiat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value string
		want  string
	}{
		"RoundsDown":     {value: "6.31127", want: "$6.31"},
		"RoundsHalfUp":   {value: "495.0155", want: "$495.02"},
		"Whole":          {value: "5", want: "$5"},
		"OneFraction":    {value: "1234.5", want: "$1,234.5"},
		"Zero":           {value: "0", want: "$0"},
		"Negative":       {value: "-2.499", want: "-$2.5"},
		"ThousandsGroup": {value: "1234567.891", want: "$1,234,567.89"},
		"BelowOne":       {value: "0.5", want: "$0.5"},
		"KeepsCents":     {value: "12345678901234567.891", want: "$12,345,678,901,234,567.89"},
	}

	for name, tc := range tests {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			i := is.New(t)

			i.Equal(tc.want, format.FormatFiat("$", decimal.RequireFromString(tc.value)))
		})
	}
}

func TestSignPrefix(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	i.Equal("+", format.SignPrefix(domain.Inbound))
	i.Equal("-", format.SignPrefix(domain.Outbound))
}

func TestRelativeDateLabel(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, time.March, 10, 1, 0, 0, 0, zone)

	payment := func(s domain.Status, at time.Time) domain.Payment {
		return domain.Payment{Direction: domain.Inbound, Status: s, Date: at}
	}

	t.Run("PendingIgnoresDate", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		for _, at := range []time.Time{{}, now, now.AddDate(-3, 0, 0), now.Add(-25 * time.Hour)} {
			i.Equal(format.LabelPending, format.RelativeDateLabel(payment(domain.StatusPending, at), now))
		}
	})

	t.Run("LateYesterdayAcrossMidnight", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		at := time.Date(2023, time.March, 9, 23, 0, 0, 0, zone)
		i.Equal(format.LabelYesterday, format.RelativeDateLabel(payment(domain.StatusSucceeded, at), now))
	})

	t.Run("SameClockTimeOneDayBack", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		i.Equal(format.LabelYesterday, format.RelativeDateLabel(payment(domain.StatusFailed, now.AddDate(0, 0, -1)), now))
	})

	t.Run("EarlyYesterdayLateToday", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		late := time.Date(2023, time.March, 10, 23, 30, 0, 0, zone)
		at := time.Date(2023, time.March, 9, 0, 15, 0, 0, zone)
		i.Equal(format.LabelYesterday, format.RelativeDateLabel(payment(domain.StatusSucceeded, at), late))
	})

	t.Run("UsesLocalCalendar", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		// 22:30 UTC on the 9th is 01:30 on the 10th in the reference zone.
		at := time.Date(2023, time.March, 9, 22, 30, 0, 0, time.UTC)
		i.Equal("March 10, 2023", format.RelativeDateLabel(payment(domain.StatusSucceeded, at), now))
	})

	t.Run("TwoDaysAgo", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		at := time.Date(2023, time.March, 8, 23, 59, 0, 0, zone)
		i.Equal("March 8, 2023", format.RelativeDateLabel(payment(domain.StatusSucceeded, at), now))
	})
}

func TestStatusToken(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	i.Equal(format.TokenPending, format.StatusToken(domain.Inbound, domain.StatusPending))
	i.Equal(format.TokenPending, format.StatusToken(domain.Outbound, domain.StatusPending))
	i.Equal(format.TokenInbound, format.StatusToken(domain.Inbound, domain.StatusSucceeded))
	i.Equal(format.TokenInbound, format.StatusToken(domain.Inbound, domain.StatusFailed))
	i.Equal(format.TokenOutbound, format.StatusToken(domain.Outbound, domain.StatusSucceeded))
	i.Equal(format.TokenOutbound, format.StatusToken(domain.Outbound, domain.StatusFailed))

	i.Equal(format.ArrowDown, format.ArrowFor(domain.Inbound))
	i.Equal(format.ArrowUp, format.ArrowFor(domain.Outbound))
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("ComposeAmount", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var e keypad.Entry
		for _, d := range []int{2, 1, 7, 6, 3} {
			e.PushDigit(d)
		}

		i.Equal(domain.Sats(21_763), e.Value())
		i.Equal("21,763 sats", format.FormatSats(e.Value()))
		i.Equal("$6.31", format.FormatFiat("$", format.ToFiat(e.Value(), decimal.NewFromInt(29_000))))
	})

	t.Run("ActivityRow", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		p := domain.Payment{
			AmountMsat: 1_706_950_000,
			Direction:  domain.Inbound,
			Status:     domain.StatusSucceeded,
			Date:       time.Date(2022, time.April, 12, 15, 4, 0, 0, zone),
		}
		now := time.Date(2099, time.January, 1, 0, 0, 0, 0, zone)

		i.Equal("April 12, 2022", format.RelativeDateLabel(p, now))
		i.Equal("+", format.SignPrefix(p.Direction))
		i.Equal("1,706,950 sats", format.FormatSats(p.AmountMsat.Sats()))

		sats, fiat := format.NewFormatter("usd", format.DefaultRate).PaymentAmounts(p)
		i.Equal("+1,706,950 sats", sats)
		i.Equal("+$495.02", fiat)
	})
}

func TestSymbol(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	i.Equal("$", format.Symbol("usd"))
	i.Equal("€", format.Symbol("EUR"))
	i.Equal("CHF ", format.Symbol("CHF"))
}
