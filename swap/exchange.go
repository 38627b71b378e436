package swap

import "strings"

// Validator reports whether an address belongs to a currency.
type Validator func(address string) bool

// Exchange describes one trading pair on a banano.trade site. The main
// coin is what the user pays with when buying the secondary coin.
type Exchange struct {
	Key          string
	Name         string
	Menu         string // menu line, e.g. "Nano ↔ Banano (banano.nano.trade)"
	APIURL       string
	MainCoin     string
	MainSymbol   string
	Coin         string
	CoinSymbol   string
	MainExplorer string
	CoinExplorer string

	MainValidator Validator
	CoinValidator Validator

	// PriceInvert shows 1/price, e.g. BAN per NANO instead of NANO per BAN.
	PriceInvert bool
}

var exchanges = []Exchange{
	{
		Key:           "nano_banano",
		Name:          "Nano ↔ Banano",
		Menu:          "Nano ↔ Banano (banano.nano.trade)",
		APIURL:        "https://banano.nano.trade",
		MainCoin:      "Nano",
		MainSymbol:    "NANO",
		Coin:          "Banano",
		CoinSymbol:    "BAN",
		MainExplorer:  "https://blocklattice.io/account",
		CoinExplorer:  "https://creeper.banano.cc/account",
		MainValidator: ValidNano,
		CoinValidator: ValidBanano,
		PriceInvert:   true,
	},
	{
		Key:           "solana_banano",
		Name:          "Solana ↔ Banano",
		Menu:          "Solana ↔ Banano (solana.banano.trade)",
		APIURL:        "https://solana.banano.trade",
		MainCoin:      "Banano",
		MainSymbol:    "BAN",
		Coin:          "Solana",
		CoinSymbol:    "SOL",
		MainExplorer:  "https://creeper.banano.cc/account",
		CoinExplorer:  "https://solana.fm/address",
		MainValidator: ValidBanano,
		CoinValidator: ValidSolana,
	},
	{
		Key:           "usdt_banano",
		Name:          "USDT ↔ Banano (Polygon)",
		Menu:          "USDT ↔ Banano (usdt.banano.trade) [Polygon]",
		APIURL:        "https://usdt.banano.trade",
		MainCoin:      "Banano",
		MainSymbol:    "BAN",
		Coin:          "USDT",
		CoinSymbol:    "USDT",
		MainExplorer:  "https://creeper.banano.cc/account",
		CoinExplorer:  "https://polygonscan.com/address",
		MainValidator: ValidBanano,
		CoinValidator: ValidPolygon,
	},
}

// Exchanges returns the supported exchanges in menu order.
func Exchanges() []Exchange {
	out := make([]Exchange, len(exchanges))
	copy(out, exchanges)
	return out
}

// Lookup returns the exchange for a 1-based menu choice.
func Lookup(choice string) (Exchange, bool) {
	return pick(exchanges, choice)
}

// WithAPIURL returns a copy of the exchange talking to another base URL.
func (e Exchange) WithAPIURL(apiURL string) Exchange {
	e.APIURL = strings.TrimRight(apiURL, "/")
	return e
}

// WithOverrides applies API URL overrides keyed by exchange key.
func WithOverrides(list []Exchange, overrides map[string]string) []Exchange {
	out := make([]Exchange, len(list))
	for i, ex := range list {
		if url, ok := overrides[ex.Key]; ok && url != "" {
			ex = ex.WithAPIURL(url)
		}
		out[i] = ex
	}
	return out
}
