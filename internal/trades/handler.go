package trades

import (
	"errors"
	"net/http"
	"strings"

	"lv-marginrisk/internal/httputil"
	"lv-marginrisk/internal/instruments"
	"lv-marginrisk/internal/risk"
	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type tradeRequest struct {
	ClientID string `json:"client_id"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	IsMargin bool   `json:"is_margin"`
}

func parseTradeRequest(r *http.Request) (TradeRequest, error) {
	var req tradeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return TradeRequest{}, err
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return TradeRequest{}, errors.New("invalid quantity")
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return TradeRequest{}, errors.New("invalid price")
	}
	return TradeRequest{
		ClientID: strings.TrimSpace(req.ClientID),
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:     types.TradeSide(strings.ToLower(req.Side)),
		Quantity: qty,
		Price:    price,
		IsMargin: req.IsMargin,
	}, nil
}

type violationPayload struct {
	Rule      string `json:"rule"`
	Message   string `json:"message"`
	Required  string `json:"required,omitempty"`
	Available string `json:"available,omitempty"`
}

func violationFrom(v *risk.Violation) violationPayload {
	p := violationPayload{Rule: v.Rule, Message: v.Message}
	if v.Rule == risk.RuleExposureExceeded || v.Rule == risk.RuleExposureBreach || v.Rule == risk.RuleInsufficientPosition {
		p.Required = v.Required.String()
		p.Available = v.Available.String()
	}
	return p
}

func writeError(w http.ResponseWriter, err error) {
	if v, ok := risk.AsViolation(err); ok {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"violation": violationFrom(v)})
		return
	}
	switch {
	case errors.Is(err, instruments.ErrNotFound), errors.Is(err, risk.ErrClientNotFound), errors.Is(err, risk.ErrProfileNotFound):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
	}
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	req, err := parseTradeRequest(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	res, err := h.svc.Execute(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	body := map[string]any{"trade": res}
	if res.Breach != nil {
		body["breach"] = violationFrom(res.Breach)
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	req, err := parseTradeRequest(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.Check(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
