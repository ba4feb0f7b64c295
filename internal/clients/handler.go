package clients

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lv-marginrisk/internal/httputil"
	"lv-marginrisk/internal/risk"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CashBalance     string `json:"cash_balance"`
	CollateralValue string `json:"collateral_value"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	cash := decimal.Zero
	if req.CashBalance != "" {
		c, err := decimal.NewFromString(req.CashBalance)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid cash_balance"})
			return
		}
		cash = c
	}
	collateral := decimal.Zero
	if req.CollateralValue != "" {
		c, err := decimal.NewFromString(req.CollateralValue)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid collateral_value"})
			return
		}
		collateral = c
	}
	client, profile, err := h.svc.Create(r.Context(), CreateRequest{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		CashBalance:     cash,
		CollateralValue: collateral,
	})
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"client": client, "risk_profile": profile})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type mutateFunc func(ctx context.Context, clientID string, amount decimal.Decimal) (risk.Overview, *risk.Violation, error)

func (h *Handler) SetCash(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.SetCash)
}

func (h *Handler) SetCollateral(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.SetCollateral)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, apply mutateFunc) {
	clientID := chi.URLParam(r, "id")
	var req amountRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid amount"})
		return
	}
	overview, breach, err := apply(r.Context(), clientID, amount)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrClientNotFound), errors.Is(err, risk.ErrProfileNotFound):
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
		default:
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		}
		return
	}
	body := map[string]any{"risk": overview}
	if breach != nil {
		body["breach"] = map[string]string{
			"rule":      breach.Rule,
			"message":   breach.Message,
			"required":  breach.Required.String(),
			"available": breach.Available.String(),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}
