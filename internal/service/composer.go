package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/backend"
	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/format"
	"github.com/vi13x/sats-wallet/internal/keypad"
)

// PlaceholderAmount replaces the fiat line while nothing has been typed.
const PlaceholderAmount = "Enter amount"

// Notice is the transient message shown after a composer action.
type Notice string

const (
	NoticeSent      Notice = "Sent"
	NoticeFailed    Notice = "Failed"
	NoticeCopied    Notice = "Copied"
	NoticeRequested Notice = "Requested"
)

type ComposerView struct {
	Title    string
	Subtitle string
}

// Composer is one payment composer session. It owns the entered amount; the
// amount is cleared only once the backend confirms an action or the session
// is closed. A Composer is not safe for concurrent use.
type Composer struct {
	w     *Wallet
	entry keypad.Entry
}

func (c *Composer) Press(key string) error {
	return c.entry.PushKey(key)
}

func (c *Composer) Amount() domain.Sats { return c.entry.Value() }

func (c *Composer) Display() ComposerView {
	amount := c.entry.Value()
	v := ComposerView{Title: format.FormatSats(amount)}
	if c.entry.IsZero() {
		v.Subtitle = PlaceholderAmount
	} else {
		v.Subtitle = c.w.Formatter().Fiat(amount)
	}
	return v
}

func (c *Composer) Close() { c.entry.Reset() }

// Request creates an invoice for the entered amount and copies it to the
// clipboard.
func (c *Composer) Request(ctx context.Context, description string) (string, Notice, error) {
	amount := c.entry.Value()
	inv, err := c.w.backend.CreateInvoice(ctx, amount.Msat(), description, c.w.settings.Get().InvoiceExpirySecs)
	if err != nil {
		c.w.log.Error("create invoice", zap.Int64("amount_sats", int64(amount)), zap.Error(err))
		return "", NoticeFailed, fmt.Errorf("create invoice: %w", err)
	}
	c.entry.Reset()

	if err := c.w.clip.WriteText(inv); err != nil {
		c.w.log.Warn("copy invoice", zap.Error(err))
		return inv, NoticeRequested, nil
	}
	return inv, NoticeCopied, nil
}

// Pay pays whatever is on the clipboard: a node id is paid the entered amount
// spontaneously, anything else is treated as an invoice.
func (c *Composer) Pay(ctx context.Context) (domain.PayResult, Notice, error) {
	text, err := c.w.clip.ReadText()
	if err != nil {
		return domain.PayResult{}, NoticeFailed, fmt.Errorf("read clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.PayResult{}, NoticeFailed, ErrNothingToPay
	}

	amount := c.entry.Value()
	var res domain.PayResult
	if backend.IsNodeID(text) {
		if amount == 0 {
			return domain.PayResult{}, NoticeFailed, ErrAmountRequired
		}
		res, err = c.w.backend.PaySpontaneous(ctx, amount.Msat(), text)
	} else {
		res, err = c.w.backend.PayInvoice(ctx, text)
	}
	if err != nil {
		c.w.log.Error("pay", zap.Error(err))
		return domain.PayResult{}, NoticeFailed, fmt.Errorf("pay: %w", err)
	}
	if !res.OK() {
		c.w.log.Info("payment failed", zap.String("reason", res.Reason))
		return res, NoticeFailed, nil
	}
	c.entry.Reset()
	return res, NoticeSent, nil
}
