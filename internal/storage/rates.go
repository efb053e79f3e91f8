package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rates holds fiat prices of one unit of Base.
type Rates struct {
	Base      string                     `json:"base"`
	Pairs     map[string]decimal.Decimal `json:"pairs"` // e.g. "USD" => 29000 when Base=BTC
	UpdatedAt time.Time                  `json:"updated_at"`
}

func DefaultRates() *Rates {
	return &Rates{
		Base: "BTC",
		Pairs: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(29_000),
			"EUR": decimal.NewFromInt(26_500),
			"GBP": decimal.NewFromInt(22_800),
		},
		UpdatedAt: time.Now(),
	}
}

func EnsureRatesFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return SaveRates(path, DefaultRates())
}

func LoadRates(path string) (*Rates, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Rates
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Pairs == nil {
		r.Pairs = map[string]decimal.Decimal{}
	}
	return &r, nil
}

func SaveRates(path string, r *Rates) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Rate returns the price of one Base in currency.
func (r *Rates) Rate(currency string) (decimal.Decimal, error) {
	rate, ok := r.Pairs[strings.ToUpper(currency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate %s/%s: %w", r.Base, currency, ErrNotFound)
	}
	return rate, nil
}
