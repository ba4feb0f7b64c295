package instruments

import (
	"errors"
	"net/http"
	"strings"

	"lv-marginrisk/internal/httputil"
	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/risk"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type instrumentResponse struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Board         string `json:"board"`
	IsMarginable  bool   `json:"is_marginable"`
	MarginRate    string `json:"margin_rate"`
	EffectiveRate string `json:"effective_rate"`
}

func toResponse(in model.Instrument) instrumentResponse {
	return instrumentResponse{
		ID:            in.ID,
		Symbol:        in.Symbol,
		Name:          in.Name,
		Board:         string(in.Board),
		IsMarginable:  in.IsMarginable,
		MarginRate:    in.MarginRate.String(),
		EffectiveRate: risk.EffectiveRate(in).String(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal error"})
		return
	}
	out := make([]instrumentResponse, 0, len(list))
	for _, in := range list {
		out = append(out, toResponse(in))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	in, err := h.store.GetBySymbol(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal error"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(in))
}
