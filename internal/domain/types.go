package domain

import (
	"time"
)

// SatsPerBTC is the number of base units in one bitcoin.
const SatsPerBTC = 100_000_000

// Sats is an amount in the smallest on-chain unit.
type Sats int64

// Msat is an amount in thousandths of a satoshi.
type Msat int64

func (s Sats) Msat() Msat { return Msat(s * 1000) }

// Sats truncates to whole satoshis.
func (m Msat) Sats() Sats { return Sats(m / 1000) }

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type PaymentID string

// Payment is a single entry of the wallet activity log as reported by the backend.
type Payment struct {
	ID          PaymentID `json:"id"`
	AmountMsat  Msat      `json:"amount_msat"`
	Direction   Direction `json:"direction"`
	Status      Status    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Invoice     string    `json:"invoice,omitempty"`
	Destination string    `json:"destination,omitempty"`
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// PayResult is the tagged result of a payment attempt. There are no partial states.
type PayResult struct {
	Outcome   Outcome   `json:"outcome"`
	PaymentID PaymentID `json:"payment_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

func (r PayResult) OK() bool { return r.Outcome == OutcomeSucceeded }

type Invoice struct {
	Encoded     string    `json:"encoded"`
	PaymentID   PaymentID `json:"payment_id"`
	AmountMsat  Msat      `json:"amount_msat"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expires_at"`
	Settled     bool      `json:"settled"`
}

// NodeSnapshot is the on-disk state of the local simulated node.
type NodeSnapshot struct {
	Version   int                 `json:"version"`
	NodeID    string              `json:"node_id"`
	Balance   Sats                `json:"balance"`
	Payments  []*Payment          `json:"payments"` // append order, oldest first
	Invoices  map[string]*Invoice `json:"invoices"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
