package handlers

import (
	"net/http"

	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/spot"
)

// SpotHandler gives the quote entry form a live price preview. The figures
// shown here are the ones staff submit back with the create request.
type SpotHandler struct {
	Gateway *spot.Gateway
}

func NewSpotHandler(gw *spot.Gateway) *SpotHandler { return &SpotHandler{Gateway: gw} }

// Latest: GET /spot
func (h *SpotHandler) Latest(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Gateway.FetchGramPrices(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	ounces := spot.ToOuncePrices(prices)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"currency":         h.Gateway.Currency,
		"gold_per_gram":    prices.Gold,
		"silver_per_gram":  prices.Silver,
		"gold_per_ounce":   ounces.Gold,
		"silver_per_ounce": ounces.Silver,
		"denominations":    spot.DenominationLabels(),
	})
}
