package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/backend"
	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/format"
	"github.com/vi13x/sats-wallet/internal/storage"
)

const (
	LabelLoading    = "Loading..."
	LabelNoActivity = "No activity yet."
	hiddenAmount    = "••••••"

	// MaxPINAttempts is how many wrong PINs a front end accepts before it
	// stays locked.
	MaxPINAttempts = 3
)

var (
	ErrNothingToPay    = errors.New("clipboard has no invoice or node id")
	ErrAmountRequired  = errors.New("enter an amount first")
	ErrWrongPIN        = errors.New("wrong PIN")
	ErrInvalidPIN      = errors.New("PIN must be 4 to 8 digits")
	ErrInvalidRate     = errors.New("rate must be positive")
	ErrBackupsDisabled = errors.New("backups need the local node")
)

type Deps struct {
	Backend   backend.Backend
	Clipboard clipboard.Clipboard
	Settings  *storage.SettingsFile
	RatesPath string
	// NodeDB and BackupsDir enable wallet backups; both are unset when the
	// backend is remote.
	NodeDB     *storage.FileDB
	BackupsDir string
	Log        *zap.Logger
}

// Wallet binds the backend to the screens: it fetches, formats and hands out
// composers. It holds no wallet state of its own.
type Wallet struct {
	backend    backend.Backend
	clip       clipboard.Clipboard
	settings   *storage.SettingsFile
	ratesPath  string
	nodeDB     *storage.FileDB
	backupsDir string
	log        *zap.Logger
	now        func() time.Time
}

func NewWallet(d Deps) *Wallet {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Wallet{
		backend:    d.Backend,
		clip:       d.Clipboard,
		settings:   d.Settings,
		ratesPath:  d.RatesPath,
		nodeDB:     d.NodeDB,
		backupsDir: d.BackupsDir,
		log:        log,
		now:        time.Now,
	}
}

// Formatter returns the formatter for the configured fiat currency, falling
// back to USD at the default rate when the rates file cannot serve it.
func (w *Wallet) Formatter() format.Formatter {
	cur := w.settings.Get().Currency
	r, err := storage.LoadRates(w.ratesPath)
	if err == nil {
		rate, rerr := r.Rate(cur)
		if rerr == nil {
			return format.NewFormatter(cur, rate)
		}
		err = rerr
	}
	w.log.Warn("using default rate", zap.String("currency", cur), zap.Error(err))
	return format.NewFormatter("USD", format.DefaultRate)
}

type BalanceView struct {
	Loaded bool
	Hidden bool
	Sats   string
	Fiat   string
}

// Balance fetches and formats the balance. On failure the view shows the
// loading placeholder and the error is returned for the caller to surface.
func (w *Wallet) Balance(ctx context.Context) (BalanceView, error) {
	sats, err := w.backend.Balance(ctx)
	if err != nil {
		w.log.Error("fetch balance", zap.Error(err))
		return BalanceView{Sats: LabelLoading}, err
	}
	if w.settings.Get().HideBalance {
		return BalanceView{Loaded: true, Hidden: true, Sats: hiddenAmount + " " + format.SatsLabel, Fiat: hiddenAmount}, nil
	}
	return BalanceView{
		Loaded: true,
		Sats:   format.FormatSats(sats),
		Fiat:   w.Formatter().Fiat(sats),
	}, nil
}

type ActivityRow struct {
	Label      string
	LabelToken format.Token
	Arrow      format.Arrow
	Token      format.Token
	AmountSats string
	AmountFiat string
}

// Activity formats the payment history in backend order.
func (w *Wallet) Activity(ctx context.Context) ([]ActivityRow, error) {
	ps, err := w.backend.Payments(ctx)
	if err != nil {
		w.log.Error("fetch payments", zap.Error(err))
		return nil, err
	}
	f := w.Formatter()
	now := w.now()
	rows := make([]ActivityRow, 0, len(ps))
	for _, p := range ps {
		sats, fiat := f.PaymentAmounts(p)
		rows = append(rows, ActivityRow{
			Label:      format.RelativeDateLabel(p, now),
			LabelToken: format.LabelToken(p.Status),
			Arrow:      format.ArrowFor(p.Direction),
			Token:      format.StatusToken(p.Direction, p.Status),
			AmountSats: sats,
			AmountFiat: fiat,
		})
	}
	return rows, nil
}

func (w *Wallet) NewComposer() *Composer {
	return &Composer{w: w}
}

// Settle forwards to backends that can settle their own invoices.
func (w *Wallet) Settle(ctx context.Context, invoice string) (bool, error) {
	s, ok := w.backend.(backend.Settler)
	if !ok {
		return false, nil
	}
	return true, s.Settle(ctx, invoice)
}
