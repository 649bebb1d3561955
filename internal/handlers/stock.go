package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tbraden/quoteboard/internal/metrics"
	"github.com/tbraden/quoteboard/internal/middleware"
	"github.com/tbraden/quoteboard/internal/stock"
)

// ==========================
// Stock Handler
// ==========================
type StockHandler struct {
	Client *stock.Client
}

// ==========================
// Get Quote (GET /api/stock/quote?symbol=X)
// ==========================
func (h *StockHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		JSONError(w, "Stock symbol is required", http.StatusBadRequest)
		return
	}

	if h.Client == nil || h.Client.APIKey == "" {
		JSONError(w, "Stock API key not configured", http.StatusInternalServerError)
		return
	}

	quote, err := h.Client.GetQuote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, stock.ErrInvalidSymbol) {
			metrics.IncQuoteLookup("invalid_symbol")
			JSONError(w, fmt.Sprintf("Stock symbol '%s' not found or invalid", symbol), http.StatusNotFound)
			return
		}
		var ue *stock.UpstreamError
		if errors.As(err, &ue) {
			// Forward the upstream status unchanged, one attempt only.
			metrics.IncQuoteLookup("upstream_error")
			JSONError(w, "Failed to fetch stock data", ue.Status)
			return
		}
		metrics.IncQuoteLookup("upstream_error")
		userID, _ := middleware.GetUserID(r.Context())
		slog.Error("stock: quote lookup failed", "symbol", symbol, "user_id", userID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncQuoteLookup("ok")
	quote.Symbol = strings.ToUpper(symbol)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}
