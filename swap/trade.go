package swap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrServerRejected means the exchange answered without a deposit form,
	// usually because it did not accept one of the addresses.
	ErrServerRejected   = errors.New("server error or incorrect address")
	ErrNoDepositAddress = errors.New("could not parse deposit address from response")
)

// depositMarker must be present in a page that carries a deposit address.
const depositMarker = `id="address`

type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	if d == Buy {
		return "buy"
	}
	return "sell"
}

// TradeRequest is one address pair of a batch. Number is 1-based.
type TradeRequest struct {
	Number      int
	MainAddress string
	CoinAddress string
	Direction   Direction
}

type TradeResult struct {
	Number         int
	ReceiveLabel   string
	ReceiveAddress string
	RefundLabel    string
	RefundAddress  string
	DepositAddress string
	ExplorerURL    string
}

// order is what a request turns into on the wire and on screen.
type order struct {
	path   string
	form   url.Values
	result TradeResult
}

func newOrder(ex Exchange, req TradeRequest) order {
	if req.Direction == Buy {
		return order{
			path: "/buy",
			form: url.Values{
				"coin_address_block":  {req.CoinAddress},
				"main_refund_address": {req.MainAddress},
			},
			result: TradeResult{
				Number:         req.Number,
				ReceiveLabel:   ex.Coin + " receive address",
				ReceiveAddress: req.CoinAddress,
				RefundLabel:    ex.MainCoin + " refund address",
				RefundAddress:  req.MainAddress,
				ExplorerURL:    ex.CoinExplorer + "/" + req.CoinAddress,
			},
		}
	}

	return order{
		path: "/sell",
		form: url.Values{
			"address_block":       {req.MainAddress},
			"coin_refund_address": {req.CoinAddress},
		},
		result: TradeResult{
			Number:         req.Number,
			ReceiveLabel:   ex.MainCoin + " receive address",
			ReceiveAddress: req.MainAddress,
			RefundLabel:    ex.Coin + " refund address",
			RefundAddress:  req.CoinAddress,
			ExplorerURL:    ex.MainExplorer + "/" + req.MainAddress,
		},
	}
}

// SubmitTrade posts one order and scrapes the deposit address from the
// returned page.
func (c *Client) SubmitTrade(ctx context.Context, ex Exchange, req TradeRequest) (TradeResult, error) {
	o := newOrder(ex, req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ex.APIURL+o.path, strings.NewReader(o.form.Encode()))
	if err != nil {
		return TradeResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, _, err := c.do(httpReq)
	if err != nil {
		return TradeResult{}, err
	}

	deposit, err := ExtractDepositAddress(body)
	if err != nil {
		return TradeResult{}, err
	}

	result := o.result
	result.DepositAddress = deposit
	return result, nil
}

// ExtractDepositAddress returns the value of the first <input> of a
// deposit page.
func ExtractDepositAddress(page []byte) (string, error) {
	if !bytes.Contains(page, []byte(depositMarker)) {
		return "", ErrServerRejected
	}

	z := html.NewTokenizer(bytes.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", ErrNoDepositAddress
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "value" && attr.Val != "" {
					return attr.Val, nil
				}
			}
			return "", fmt.Errorf("%w: first input has no value", ErrNoDepositAddress)
		}
	}
}
