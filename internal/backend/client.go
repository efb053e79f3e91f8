package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/domain"
)

const (
	defaultClientTimeout = 30 * time.Second
	defaultRetries       = 3
)

// HTTPError is a non-2xx answer from the wallet daemon.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return ErrTransport }

// Client talks to a wallet daemon over JSON/HTTP. Reads are retried with
// exponential backoff; payments and invoice creation are sent once.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	retries uint64
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

func WithRetries(n uint64) ClientOption {
	return func(cl *Client) { cl.retries = n }
}

func NewClient(baseURL string, log *zap.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultClientTimeout},
		log:     log,
		retries: defaultRetries,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Balance(ctx context.Context) (domain.Sats, error) {
	var out balanceResponse
	if err := c.get(ctx, pathBalance, &out); err != nil {
		return 0, err
	}
	return out.BalanceSats, nil
}

func (c *Client) Payments(ctx context.Context) ([]domain.Payment, error) {
	var out paymentsResponse
	if err := c.get(ctx, pathPayments, &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

func (c *Client) CreateInvoice(ctx context.Context, amount domain.Msat, description string, expirySecs uint32) (string, error) {
	var out invoiceResponse
	in := invoiceRequest{AmountMsat: amount, Description: description, ExpirySecs: expirySecs}
	if err := c.post(ctx, pathInvoices, in, &out); err != nil {
		return "", err
	}
	return out.Invoice, nil
}

func (c *Client) PayInvoice(ctx context.Context, invoice string) (domain.PayResult, error) {
	var out domain.PayResult
	if err := c.post(ctx, pathPayInvoice, payInvoiceRequest{Invoice: invoice}, &out); err != nil {
		return domain.PayResult{}, err
	}
	return out, nil
}

func (c *Client) PaySpontaneous(ctx context.Context, amount domain.Msat, nodeID string) (domain.PayResult, error) {
	var out domain.PayResult
	in := paySpontaneousRequest{AmountMsat: amount, NodeID: nodeID}
	if err := c.post(ctx, pathPaySpontaneous, in, &out); err != nil {
		return domain.PayResult{}, err
	}
	return out, nil
}

func (c *Client) Settle(ctx context.Context, invoice string) error {
	return c.post(ctx, settlePath(invoice), nil, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	op := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		var he *HTTPError
		if errors.As(err, &he) && he.Status < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	notify := func(err error, d time.Duration) {
		c.log.Warn("backend call failed, retrying",
			zap.String("path", path), zap.Duration("backoff", d), zap.Error(err))
	}
	return backoff.RetryNotify(op, b, notify)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &HTTPError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrTransport, path, err)
	}
	return nil
}
