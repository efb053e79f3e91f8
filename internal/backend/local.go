package backend

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/storage"
)

// simPrefix marks invoices minted by LocalNode: lnsim<msat>1<32 hex>.
const (
	simPrefix = "lnsim"
	simIDLen  = 32
)

// LocalNode is a simulated lightning node persisted in a FileDB. It keeps a
// single balance and moves it on payments; there is no network behind it.
type LocalNode struct {
	db  *storage.FileDB
	log *zap.Logger
	now func() time.Time
}

func NewLocalNode(db *storage.FileDB, log *zap.Logger) *LocalNode {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalNode{db: db, log: log, now: time.Now}
}

// SeedNode returns an initializer for a fresh snapshot with the given balance.
func SeedNode(balance domain.Sats) func(*domain.NodeSnapshot) {
	return func(s *domain.NodeSnapshot) {
		s.NodeID = NewNodeID()
		s.Balance = balance
	}
}

// NewNodeID returns a random, well formed node id.
func NewNodeID() string {
	a, b := uuid.New(), uuid.New()
	return "02" + hexNoDash(a) + hexNoDash(b)
}

func hexNoDash(id uuid.UUID) string { return strings.ReplaceAll(id.String(), "-", "") }

func (n *LocalNode) NodeID() string { return n.db.NodeID() }

func (n *LocalNode) Balance(ctx context.Context) (domain.Sats, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return n.db.Balance(), nil
}

func (n *LocalNode) Payments(ctx context.Context) ([]domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.db.ListPayments(0), nil
}

func (n *LocalNode) CreateInvoice(ctx context.Context, amount domain.Msat, description string, expirySecs uint32) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("%w: %d msat", ErrInvalidAmount, amount)
	}
	if expirySecs == 0 {
		expirySecs = DefaultInvoiceExpirySecs
	}
	id := uuid.New()
	encoded := simPrefix + strconv.FormatInt(int64(amount), 10) + "1" + hexNoDash(id)
	now := n.now()
	err := n.db.Update(ctx, func(s *domain.NodeSnapshot) error {
		s.Invoices[encoded] = &domain.Invoice{
			Encoded:     encoded,
			PaymentID:   domain.PaymentID(id.String()),
			AmountMsat:  amount,
			Description: description,
			ExpiresAt:   now.Add(time.Duration(expirySecs) * time.Second),
		}
		s.Payments = append(s.Payments, &domain.Payment{
			ID:          domain.PaymentID(id.String()),
			AmountMsat:  amount,
			Direction:   domain.Inbound,
			Status:      domain.StatusPending,
			Date:        now,
			Description: description,
			Invoice:     encoded,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	n.log.Debug("invoice created", zap.String("payment_id", id.String()), zap.Int64("amount_msat", int64(amount)))
	return encoded, nil
}

// Settle marks one of our invoices as paid and credits the balance. An
// expired invoice is marked failed instead.
func (n *LocalNode) Settle(ctx context.Context, invoice string) error {
	if norm, _, err := parseSimInvoice(invoice); err == nil {
		invoice = norm
	}
	now := n.now()
	var expired bool
	err := n.db.Update(ctx, func(s *domain.NodeSnapshot) error {
		inv, ok := s.Invoices[invoice]
		if !ok {
			return fmt.Errorf("invoice %q: %w", invoice, storage.ErrNotFound)
		}
		if inv.Settled {
			return nil
		}
		p := findPayment(s, inv.PaymentID)
		if now.After(inv.ExpiresAt) {
			expired = true
			if p != nil {
				p.Status = domain.StatusFailed
			}
			return nil
		}
		inv.Settled = true
		s.Balance += inv.AmountMsat.Sats()
		if p != nil {
			p.Status = domain.StatusSucceeded
			p.Date = now
		}
		return nil
	})
	if err != nil {
		return err
	}
	if expired {
		return fmt.Errorf("settle: %w", ErrInvoiceExpired)
	}
	n.log.Info("invoice settled", zap.String("invoice", invoice))
	return nil
}

func (n *LocalNode) PayInvoice(ctx context.Context, invoice string) (domain.PayResult, error) {
	invoice, amount, err := parseSimInvoice(invoice)
	if err != nil {
		return domain.PayResult{}, err
	}
	if _, err := n.db.GetInvoice(invoice); err == nil {
		return failed("cannot pay own invoice"), nil
	}
	if amount == 0 {
		return failed("invoice has no amount"), nil
	}
	return n.send(ctx, amount, &domain.Payment{Invoice: invoice})
}

func (n *LocalNode) PaySpontaneous(ctx context.Context, amount domain.Msat, nodeID string) (domain.PayResult, error) {
	if amount <= 0 {
		return domain.PayResult{}, fmt.Errorf("%w: %d msat", ErrInvalidAmount, amount)
	}
	if err := validateNodeID(nodeID); err != nil {
		return domain.PayResult{}, err
	}
	if nodeID == n.db.NodeID() {
		return failed("cannot pay self"), nil
	}
	return n.send(ctx, amount, &domain.Payment{Destination: nodeID})
}

// send debits the balance and records the outbound payment. A payment that
// cannot be covered is recorded as failed.
func (n *LocalNode) send(ctx context.Context, amount domain.Msat, p *domain.Payment) (domain.PayResult, error) {
	p.ID = domain.PaymentID(uuid.NewString())
	p.AmountMsat = amount
	p.Direction = domain.Outbound
	p.Date = n.now()

	var res domain.PayResult
	err := n.db.Update(ctx, func(s *domain.NodeSnapshot) error {
		// round up so sub-sat amounts still cost something
		cost := domain.Sats((int64(amount) + 999) / 1000)
		if cost > s.Balance {
			p.Status = domain.StatusFailed
			res = failed("insufficient balance")
		} else {
			s.Balance -= cost
			p.Status = domain.StatusSucceeded
			res = domain.PayResult{Outcome: domain.OutcomeSucceeded}
		}
		res.PaymentID = p.ID
		s.Payments = append(s.Payments, p)
		return nil
	})
	if err != nil {
		return domain.PayResult{}, err
	}
	n.log.Info("payment sent",
		zap.String("payment_id", string(p.ID)),
		zap.Int64("amount_msat", int64(amount)),
		zap.String("outcome", string(res.Outcome)))
	return res, nil
}

func findPayment(s *domain.NodeSnapshot, id domain.PaymentID) *domain.Payment {
	for _, p := range s.Payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func failed(reason string) domain.PayResult {
	return domain.PayResult{Outcome: domain.OutcomeFailed, Reason: reason}
}

// parseSimInvoice normalizes an lnsim invoice and extracts its msat amount.
func parseSimInvoice(s string) (string, domain.Msat, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "lightning:")
	body, ok := strings.CutPrefix(s, simPrefix)
	if !ok || len(body) < simIDLen+2 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidInvoice, s)
	}
	sep := len(body) - simIDLen - 1
	if body[sep] != '1' {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidInvoice, s)
	}
	if _, err := hex.DecodeString(body[sep+1:]); err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidInvoice, s)
	}
	amt, err := strconv.ParseInt(body[:sep], 10, 64)
	if err != nil || amt < 0 {
		return "", 0, fmt.Errorf("%w: bad amount in %q", ErrInvalidInvoice, s)
	}
	return s, domain.Msat(amt), nil
}
