package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/storage"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// NewHandler exposes b over JSON/HTTP. The settle route is only mounted when
// b implements Settler.
func NewHandler(b Backend, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{backend: b, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get(pathBalance, h.serve(h.balance))
	r.Get(pathPayments, h.serve(h.payments))
	r.Post(pathInvoices, h.serve(h.createInvoice))
	r.Post(pathPayInvoice, h.serve(h.payInvoice))
	r.Post(pathPaySpontaneous, h.serve(h.paySpontaneous))
	if s, ok := b.(Settler); ok {
		r.Post(pathInvoices+"/{invoice}/settle", h.serve(func(w http.ResponseWriter, r *http.Request) error {
			inv, err := url.PathUnescape(chi.URLParam(r, "invoice"))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInvoice, err)
			}
			if err := s.Settle(r.Context(), inv); err != nil {
				return err
			}
			w.WriteHeader(http.StatusNoContent)
			return nil
		}))
	}
	return r
}

type handler struct {
	backend Backend
	log     *zap.Logger
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) error {
	b, err := h.backend.Balance(r.Context())
	if err != nil {
		return err
	}
	return sendJSON(w, http.StatusOK, balanceResponse{BalanceSats: b})
}

func (h *handler) payments(w http.ResponseWriter, r *http.Request) error {
	ps, err := h.backend.Payments(r.Context())
	if err != nil {
		return err
	}
	return sendJSON(w, http.StatusOK, paymentsResponse{Payments: ps})
}

func (h *handler) createInvoice(w http.ResponseWriter, r *http.Request) error {
	var in invoiceRequest
	if err := decode(r, &in); err != nil {
		return err
	}
	inv, err := h.backend.CreateInvoice(r.Context(), in.AmountMsat, in.Description, in.ExpirySecs)
	if err != nil {
		return err
	}
	return sendJSON(w, http.StatusCreated, invoiceResponse{Invoice: inv})
}

func (h *handler) payInvoice(w http.ResponseWriter, r *http.Request) error {
	var in payInvoiceRequest
	if err := decode(r, &in); err != nil {
		return err
	}
	res, err := h.backend.PayInvoice(r.Context(), in.Invoice)
	if err != nil {
		return err
	}
	return sendJSON(w, http.StatusOK, res)
}

func (h *handler) paySpontaneous(w http.ResponseWriter, r *http.Request) error {
	var in paySpontaneousRequest
	if err := decode(r, &in); err != nil {
		return err
	}
	res, err := h.backend.PaySpontaneous(r.Context(), in.AmountMsat, in.NodeID)
	if err != nil {
		return err
	}
	return sendJSON(w, http.StatusOK, res)
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (h *handler) serve(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		_ = sendJSON(w, status, errorResponse{Error: err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, ErrInvalidInvoice),
		errors.Is(err, ErrInvalidNodeID),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvoiceExpired):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

func sendJSON(w http.ResponseWriter, status int, obj any) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
