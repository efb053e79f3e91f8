package format

import (
	"time"

	"github.com/vi13x/sats-wallet/internal/domain"
)

const (
	LabelPending   = "Pending..."
	LabelYesterday = "Yesterday"

	// DateLayout is the en-US long date, e.g. "April 12, 2022".
	DateLayout = "January 2, 2006"
)

// Token selects the style of an activity row. The presentation layer maps it
// to colours.
type Token string

const (
	TokenPending  Token = "pending"
	TokenInbound  Token = "inbound"
	TokenOutbound Token = "outbound"

	// TokenNeutral is the plain text style of non-pending labels.
	TokenNeutral Token = "neutral"
)

// Arrow is the glyph drawn in the circle of an activity row.
type Arrow string

const (
	ArrowDown Arrow = "down"
	ArrowUp   Arrow = "up"
)

// RelativeDateLabel describes when a payment happened relative to now.
// Days are compared on the calendar of now's location, so 23:00 yesterday
// and 01:00 today fall on different days.
func RelativeDateLabel(p domain.Payment, now time.Time) string {
	if p.Status == domain.StatusPending {
		return LabelPending
	}
	date := p.Date.In(now.Location())
	if sameDay(date, now.AddDate(0, 0, -1)) {
		return LabelYesterday
	}
	return date.Format(DateLayout)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StatusToken picks the row style: pending wins over direction.
func StatusToken(d domain.Direction, s domain.Status) Token {
	switch {
	case s == domain.StatusPending:
		return TokenPending
	case d == domain.Inbound:
		return TokenInbound
	default:
		return TokenOutbound
	}
}

// LabelToken is the style of the date label; only pending rows stand out.
func LabelToken(s domain.Status) Token {
	if s == domain.StatusPending {
		return TokenPending
	}
	return TokenNeutral
}

func ArrowFor(d domain.Direction) Arrow {
	if d == domain.Inbound {
		return ArrowDown
	}
	return ArrowUp
}
