package backend

import (
	"net/url"

	"github.com/vi13x/sats-wallet/internal/domain"
)

const (
	pathBalance        = "/v1/balance"
	pathPayments       = "/v1/payments"
	pathInvoices       = "/v1/invoices"
	pathPayInvoice     = "/v1/payments/invoice"
	pathPaySpontaneous = "/v1/payments/spontaneous"
)

func settlePath(invoice string) string {
	return pathInvoices + "/" + url.PathEscape(invoice) + "/settle"
}

type balanceResponse struct {
	BalanceSats domain.Sats `json:"balance_sats"`
}

type paymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
}

type invoiceRequest struct {
	AmountMsat  domain.Msat `json:"amount_msat"`
	Description string      `json:"description"`
	ExpirySecs  uint32      `json:"expiry_secs"`
}

type invoiceResponse struct {
	Invoice string `json:"invoice"`
}

type payInvoiceRequest struct {
	Invoice string `json:"invoice"`
}

type paySpontaneousRequest struct {
	AmountMsat domain.Msat `json:"amount_msat"`
	NodeID     string      `json:"node_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}
