// Package backend defines the wallet backend the UI talks to and ships three
// implementations of the bridge: an HTTP client, an HTTP handler exposing any
// Backend, and a simulated local node.
package backend

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/vi13x/sats-wallet/internal/domain"
)

// DefaultInvoiceExpirySecs matches the expiry the composer requests when the
// user has not configured one.
const DefaultInvoiceExpirySecs uint32 = 3600

// nodeIDLen is the hex length of a compressed secp256k1 public key.
const nodeIDLen = 66

var (
	ErrTransport      = errors.New("backend transport")
	ErrInvalidInvoice = errors.New("invalid invoice")
	ErrInvalidNodeID  = errors.New("invalid node id")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvoiceExpired = errors.New("invoice expired")
)

// Backend is the request/response bridge to the wallet. Each call is
// independent; callers must not rely on ordering between concurrent calls.
type Backend interface {
	Balance(ctx context.Context) (domain.Sats, error)
	// Payments returns the activity log, newest first.
	Payments(ctx context.Context) ([]domain.Payment, error)
	CreateInvoice(ctx context.Context, amount domain.Msat, description string, expirySecs uint32) (string, error)
	PayInvoice(ctx context.Context, invoice string) (domain.PayResult, error)
	PaySpontaneous(ctx context.Context, amount domain.Msat, nodeID string) (domain.PayResult, error)
}

// Settler is implemented by backends that can mark one of their own invoices
// as paid. Only the simulated node does.
type Settler interface {
	Settle(ctx context.Context, invoice string) error
}

// IsNodeID reports whether s looks like a compressed public key in hex.
func IsNodeID(s string) bool {
	if len(s) != nodeIDLen {
		return false
	}
	if s[:2] != "02" && s[:2] != "03" {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func validateNodeID(s string) error {
	if !IsNodeID(s) {
		return fmt.Errorf("%w: %q", ErrInvalidNodeID, s)
	}
	return nil
}
