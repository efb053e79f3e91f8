package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/vi13x/sats-wallet/internal/storage"
)

type Section string

const (
	SectionGeneral  Section = "General"
	SectionFees     Section = "Fees"
	SectionPrivacy  Section = "Privacy"
	SectionSecurity Section = "Security"
	SectionBackup   Section = "Wallet backup"
	SectionHelp     Section = "Help & Support"
	SectionAdvanced Section = "Advanced"
)

// Sections lists the settings menu in display order.
var Sections = []Section{
	SectionGeneral,
	SectionFees,
	SectionPrivacy,
	SectionSecurity,
	SectionBackup,
	SectionHelp,
	SectionAdvanced,
}

const (
	FeesText = "Lightning routing fees are set by the backend node and are included in the amount sent."
	HelpText = "Request: type an amount and press Request to copy an invoice.\n" +
		"Pay: copy an invoice or node id, type an amount if needed and press Pay."
)

func (w *Wallet) Settings() storage.Settings { return w.settings.Get() }

func (w *Wallet) GetRates() (*storage.Rates, error) { return storage.LoadRates(w.ratesPath) }

// SetRate stores the price of one bitcoin in cur.
func (w *Wallet) SetRate(cur string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrInvalidRate
	}
	r, err := w.GetRates()
	if err != nil {
		return err
	}
	r.Pairs[strings.ToUpper(cur)] = rate
	r.UpdatedAt = time.Now()
	return storage.SaveRates(w.ratesPath, r)
}

// SetCurrency switches the display currency. A rate must exist for it.
func (w *Wallet) SetCurrency(cur string) error {
	cur = strings.ToUpper(strings.TrimSpace(cur))
	r, err := w.GetRates()
	if err != nil {
		return err
	}
	if _, err := r.Rate(cur); err != nil {
		return err
	}
	return w.settings.Update(func(s *storage.Settings) { s.Currency = cur })
}

func (w *Wallet) ToggleHideBalance() (bool, error) {
	var hidden bool
	err := w.settings.Update(func(s *storage.Settings) {
		s.HideBalance = !s.HideBalance
		hidden = s.HideBalance
	})
	return hidden, err
}

func (w *Wallet) SetInvoiceExpiry(secs uint32) error {
	return w.settings.Update(func(s *storage.Settings) { s.InvoiceExpirySecs = secs })
}

func (w *Wallet) HasPIN() bool { return w.settings.Get().PINHash != "" }

func (w *Wallet) SetPIN(pin string) error {
	if err := validatePIN(pin); err != nil {
		return err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	return w.settings.Update(func(s *storage.Settings) { s.PINHash = string(h) })
}

// VerifyPIN succeeds when no PIN is set.
func (w *Wallet) VerifyPIN(pin string) error {
	h := w.settings.Get().PINHash
	if h == "" {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte(pin)) != nil {
		return ErrWrongPIN
	}
	return nil
}

func (w *Wallet) ClearPIN(current string) error {
	if err := w.VerifyPIN(current); err != nil {
		return err
	}
	return w.settings.Update(func(s *storage.Settings) { s.PINHash = "" })
}

func validatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 8 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
