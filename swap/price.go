package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidPrice = errors.New("invalid price")

// PriceQuote is the current rate and limits of an exchange.
type PriceQuote struct {
	BuyPrice  float64
	SellPrice float64
	MaxBuy    float64
	MaxSell   float64
}

// priceResponse accepts each field as a JSON number or a numeric string.
type priceResponse struct {
	BuyPrice  *decimal.Decimal `json:"user_buy_price"`
	SellPrice *decimal.Decimal `json:"user_sell_price"`
	MaxBuy    *decimal.Decimal `json:"max_buy"`
	MaxSell   *decimal.Decimal `json:"max_sell"`
}

func (r priceResponse) quote() (PriceQuote, error) {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"user_buy_price", r.BuyPrice},
		{"user_sell_price", r.SellPrice},
		{"max_buy", r.MaxBuy},
		{"max_sell", r.MaxSell},
	}
	for _, f := range fields {
		if f.value == nil {
			return PriceQuote{}, fmt.Errorf("%w: missing %s", ErrInvalidPrice, f.name)
		}
	}

	return PriceQuote{
		BuyPrice:  r.BuyPrice.InexactFloat64(),
		SellPrice: r.SellPrice.InexactFloat64(),
		MaxBuy:    r.MaxBuy.InexactFloat64(),
		MaxSell:   r.MaxSell.InexactFloat64(),
	}, nil
}

// FetchPrice gets the current quote of the exchange at apiURL.
func (c *Client) FetchPrice(ctx context.Context, apiURL string) (PriceQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api", nil)
	if err != nil {
		return PriceQuote{}, err
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return PriceQuote{}, err
	}
	if status < 200 || status > 299 {
		return PriceQuote{}, fmt.Errorf("price api returned status %d", status)
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PriceQuote{}, fmt.Errorf("failed to decode price response: %w", err)
	}

	return resp.quote()
}

// DisplayRates returns the buy and sell rates as shown to the user.
// Inverted rates are rounded to 2 decimal places.
func DisplayRates(ex Exchange, q PriceQuote) (buy, sell float64, err error) {
	if !ex.PriceInvert {
		return q.BuyPrice, q.SellPrice, nil
	}
	if q.BuyPrice <= 0 || q.SellPrice <= 0 {
		return 0, 0, fmt.Errorf("%w: cannot invert buy %v / sell %v", ErrInvalidPrice, q.BuyPrice, q.SellPrice)
	}
	return round2(1 / q.BuyPrice), round2(1 / q.SellPrice), nil
}

// FormatQuote renders the buy and sell lines of a quote.
func FormatQuote(ex Exchange, q PriceQuote) (string, string, error) {
	buy, sell, err := DisplayRates(ex, q)
	if err != nil {
		return "", "", err
	}

	p := message.NewPrinter(language.English)

	if ex.PriceInvert {
		buyLine := fmt.Sprintf("Buy Price: 1 %s:%s %s - Max Buy: %s %s",
			ex.MainSymbol, shortFloat(buy), ex.CoinSymbol, grouped(p, q.MaxBuy), ex.MainSymbol)
		sellLine := fmt.Sprintf("Sell Price: %s %s:1 %s - Max Sell: %s %s",
			shortFloat(sell), ex.CoinSymbol, ex.MainSymbol, grouped(p, q.MaxSell), ex.CoinSymbol)
		return buyLine, sellLine, nil
	}

	maxSell := p.Sprintf("%.2f", q.MaxSell)
	if q.MaxSell < 100 {
		maxSell = strconv.FormatFloat(q.MaxSell, 'f', 4, 64)
	}

	buyLine := fmt.Sprintf("Buy Price: 1 %s = %s %s - Max Buy: %s %s",
		ex.CoinSymbol, p.Sprintf("%.2f", buy), ex.MainSymbol, grouped(p, q.MaxBuy), ex.MainSymbol)
	sellLine := fmt.Sprintf("Sell Price: 1 %s = %s %s - Max Sell: %s %s",
		ex.CoinSymbol, p.Sprintf("%.2f", sell), ex.MainSymbol, maxSell, ex.CoinSymbol)
	return buyLine, sellLine, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// shortFloat prints the shortest form, keeping at least one decimal: 2 -> "2.0".
func shortFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}

// grouped prints v with thousands separators and only the decimals it needs.
func grouped(p *message.Printer, v float64) string {
	decimals := 0
	if exp := decimal.NewFromFloat(v).Exponent(); exp < 0 {
		decimals = int(-exp)
	}
	return p.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}
