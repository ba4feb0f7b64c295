package risk

import (
	"errors"
	"net/http"

	"lv-marginrisk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrProfileNotFound):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal error"})
	}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	overview, err := h.svc.Overview(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

type enforcementResponse struct {
	Overview
	Breach *breachPayload `json:"breach,omitempty"`
}

type breachPayload struct {
	Rule      string `json:"rule"`
	Message   string `json:"message"`
	Required  string `json:"required"`
	Available string `json:"available"`
}

func breachFrom(v *Violation) *breachPayload {
	if v == nil {
		return nil
	}
	return &breachPayload{
		Rule:      v.Rule,
		Message:   v.Message,
		Required:  v.Required.String(),
		Available: v.Available.String(),
	}
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	overview, breach, err := h.svc.Recalculate(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, enforcementResponse{Overview: overview, Breach: breachFrom(breach)})
}

type setMarginRequest struct {
	AllowMargin *bool `json:"allow_margin"`
}

func (h *Handler) SetMargin(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var req setMarginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if req.AllowMargin == nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "allow_margin is required"})
		return
	}
	overview, err := h.svc.SetAllowMargin(r.Context(), clientID, *req.AllowMargin)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}
