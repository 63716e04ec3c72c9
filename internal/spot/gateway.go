package spot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sternbridge/bullion-quotes/internal/settings"
)

// ErrUnavailable wraps every upstream feed failure. The gateway never
// substitutes synthetic prices: whether to degrade is the caller's call.
var ErrUnavailable = errors.New("spot feed unavailable")

// OffsetSource supplies the normalisation offset percent at fetch time.
// *settings.Store satisfies it.
type OffsetSource interface {
	Float(key string, def float64) (float64, error)
}

// GramPrices holds normalised per-gram prices in the operating currency.
type GramPrices struct {
	Gold   decimal.Decimal
	Silver decimal.Decimal
}

// OuncePrices holds the derived per-troy-ounce prices.
type OuncePrices struct {
	Gold   decimal.Decimal
	Silver decimal.Decimal
}

// Gateway fetches live gold/silver gram prices from the configured feed and
// applies the house normalisation offset before returning them.
type Gateway struct {
	BaseURL  string
	Currency string
	Offsets  OffsetSource
	Client   *http.Client
}

func NewGateway(baseURL, currency string, offsets OffsetSource, timeout time.Duration) *Gateway {
	return &Gateway{
		BaseURL:  baseURL,
		Currency: currency,
		Offsets:  offsets,
		Client:   &http.Client{Timeout: timeout},
	}
}

// feedResponse is the upstream wire shape.
type feedResponse struct {
	Currency string `json:"currency"`
	Metals   struct {
		Gold   *float64 `json:"gold"`
		Silver *float64 `json:"silver"`
	} `json:"metals"`
}

// FetchGramPrices returns offset-adjusted per-gram prices. Any network
// error, non-2xx status, or shape mismatch fails with ErrUnavailable.
func (g *Gateway) FetchGramPrices(ctx context.Context) (GramPrices, error) {
	if g.BaseURL == "" {
		return GramPrices{}, fmt.Errorf("%w: no feed URL configured", ErrUnavailable)
	}
	u := fmt.Sprintf("%s/v1/latest?currency=%s&unit=gram", g.BaseURL, url.QueryEscape(g.Currency))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return GramPrices{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := g.Client.Do(req)
	if err != nil {
		return GramPrices{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return GramPrices{}, fmt.Errorf("%w: feed returned status %d", ErrUnavailable, resp.StatusCode)
	}
	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GramPrices{}, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	if body.Metals.Gold == nil || body.Metals.Silver == nil {
		return GramPrices{}, fmt.Errorf("%w: response missing metal rates", ErrUnavailable)
	}
	gold := *body.Metals.Gold
	silver := *body.Metals.Silver
	if gold <= 0 || silver <= 0 {
		return GramPrices{}, fmt.Errorf("%w: non-positive metal rate", ErrUnavailable)
	}

	// Offset is read from settings on every fetch so admin changes apply
	// immediately.
	offset, err := g.Offsets.Float(settings.KeySpotOffset, 0)
	if err != nil {
		return GramPrices{}, fmt.Errorf("read normalisation offset: %w", err)
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(offset).Div(decimal.NewFromInt(100)))
	return GramPrices{
		Gold:   decimal.NewFromFloat(gold).Mul(factor),
		Silver: decimal.NewFromFloat(silver).Mul(factor),
	}, nil
}

// ToOuncePrices derives per-troy-ounce prices from gram prices.
func ToOuncePrices(gp GramPrices) OuncePrices {
	return OuncePrices{
		Gold:   gp.Gold.Mul(GramsPerTroyOunce),
		Silver: gp.Silver.Mul(GramsPerTroyOunce),
	}
}
