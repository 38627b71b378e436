package swap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nekowawolf/banano-trade-bot/logger"
)

var (
	ErrInputClosed    = errors.New("input closed")
	ErrLengthMismatch = errors.New("address lists differ in length")
)

// Trader talks to a banano.trade exchange.
type Trader interface {
	FetchPrice(ctx context.Context, apiURL string) (PriceQuote, error)
	SubmitTrade(ctx context.Context, ex Exchange, req TradeRequest) (TradeResult, error)
}

// Session drives one interactive run: pick an exchange and a direction,
// show the quote, read the addresses and submit the trades one by one.
type Session struct {
	in        *bufio.Reader
	lines     chan inputLine
	scanOnce  sync.Once
	out       io.Writer
	trader    Trader
	exchanges []Exchange
}

type inputLine struct {
	text string
	err  error
}

func NewSession(in io.Reader, out io.Writer, trader Trader, exchanges []Exchange) *Session {
	return &Session{
		in:        bufio.NewReader(in),
		lines:     make(chan inputLine, 1),
		out:       out,
		trader:    trader,
		exchanges: exchanges,
	}
}

func (s *Session) Run(ctx context.Context) error {
	ex, err := s.SelectExchange(ctx)
	if err != nil {
		return err
	}

	direction, err := s.SelectDirection(ctx, ex)
	if err != nil {
		return err
	}

	// a failed quote or mismatched lists end the run normally once reported
	if err := s.ShowPrice(ctx, ex); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		fmt.Fprintf(s.out, "\n%s %v\n", red("Failed to fetch prices:"), err)
		logger.Log.Warnw("price fetch failed", "exchange", ex.Key, "error", err)
		return nil
	}

	mainAddresses, err := s.ReadAddresses(ctx, ex.MainCoin, ex.MainValidator)
	if err != nil {
		return err
	}
	coinAddresses, err := s.ReadAddresses(ctx, ex.Coin, ex.CoinValidator)
	if err != nil {
		return err
	}

	summary, err := s.ProcessBatch(ctx, ex, direction, mainAddresses, coinAddresses)
	if errors.Is(err, ErrLengthMismatch) {
		return nil
	}
	if err != nil {
		return err
	}
	printBatchSummary(s.out, summary)
	return nil
}

func (s *Session) SelectExchange(ctx context.Context) (Exchange, error) {
	fmt.Fprintln(s.out, "Select Exchange:")
	for i, ex := range s.exchanges {
		fmt.Fprintf(s.out, "%d) %s\n", i+1, ex.Menu)
	}

	for {
		fmt.Fprint(s.out, "Your choice: ")
		line, err := s.readLine(ctx)
		if err != nil {
			return Exchange{}, err
		}
		if ex, ok := pick(s.exchanges, line); ok {
			fmt.Fprintf(s.out, "\nUsing %s exchange\n\n", cyan(ex.Name))
			return ex, nil
		}
	}
}

func (s *Session) SelectDirection(ctx context.Context, ex Exchange) (Direction, error) {
	options := []string{"Buy " + ex.Coin, "Sell " + ex.Coin}

	var menu strings.Builder
	menu.WriteString("Pick an option:\n")
	for i, option := range options {
		fmt.Fprintf(&menu, "%d) %s\n", i+1, option)
	}
	menu.WriteString("Your choice: ")

	for {
		fmt.Fprint(s.out, menu.String())
		line, err := s.readLine(ctx)
		if err != nil {
			return Buy, err
		}
		switch line {
		case "1":
			fmt.Fprintf(s.out, "You picked: %s\n", options[0])
			return Buy, nil
		case "2":
			fmt.Fprintf(s.out, "You picked: %s\n", options[1])
			return Sell, nil
		}
	}
}

// ShowPrice fetches and prints the current quote. Nothing is retried.
func (s *Session) ShowPrice(ctx context.Context, ex Exchange) error {
	quote, err := s.trader.FetchPrice(ctx, ex.APIURL)
	if err != nil {
		return err
	}

	buyLine, sellLine, err := FormatQuote(ex, quote)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\n%s\n%s\n", buyLine, sellLine)
	return nil
}

// ReadAddresses prompts until a non-empty list of valid addresses is given.
func (s *Session) ReadAddresses(ctx context.Context, currency string, valid Validator) ([]string, error) {
	fmt.Fprintln(s.out, "\nMultiple addresses supported, separated by space")

	for {
		fmt.Fprintf(s.out, "Enter receive/refund %s address: ", currency)
		line, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}

		addresses := ParseAddresses(line)
		if len(addresses) == 0 {
			fmt.Fprintf(s.out, "Please enter at least one %s address.\n", currency)
			continue
		}
		if !ValidateAll(addresses, valid) {
			fmt.Fprintf(s.out, "%s\n", yellow(fmt.Sprintf("Sorry, one or more addresses are not valid %s addresses.", currency)))
			continue
		}

		fmt.Fprintf(s.out, "List of %s addresses: %s\n", currency, quotedList(addresses))
		return addresses, nil
	}
}

// BatchSummary counts the outcome of a batch.
type BatchSummary struct {
	Total     int
	Succeeded int
}

// ProcessBatch submits one trade per address pair, in input order. A failed
// trade is reported and skipped; only a cancelled context stops the batch.
func (s *Session) ProcessBatch(ctx context.Context, ex Exchange, direction Direction, mainAddresses, coinAddresses []string) (BatchSummary, error) {
	if len(mainAddresses) != len(coinAddresses) {
		fmt.Fprintf(s.out, "%s\n", red(fmt.Sprintf("Error! %s and %s address lists must have the same length!", ex.MainCoin, ex.Coin)))
		return BatchSummary{}, fmt.Errorf("%w: %d %s, %d %s", ErrLengthMismatch,
			len(mainAddresses), ex.MainCoin, len(coinAddresses), ex.Coin)
	}

	runID := uuid.NewString()
	log := logger.Log.With("run", runID, "exchange", ex.Key, "direction", direction.String())
	log.Infow("starting batch", "trades", len(mainAddresses))

	summary := BatchSummary{Total: len(mainAddresses)}
	for i := range mainAddresses {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		req := TradeRequest{
			Number:      i + 1,
			MainAddress: mainAddresses[i],
			CoinAddress: coinAddresses[i],
			Direction:   direction,
		}

		result, err := s.trader.SubmitTrade(ctx, ex, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			log.Warnw("trade failed", "number", req.Number, "error", err)
			printTradeError(s.out, err)
			continue
		}

		log.Debugw("trade submitted", "number", req.Number, "deposit", result.DepositAddress)
		summary.Succeeded++
		printTradeResult(s.out, result)
	}

	log.Infow("batch finished", "succeeded", summary.Succeeded, "total", summary.Total)
	return summary, nil
}

// readLine waits for the next input line or for ctx to end. Stdin is read
// by a single goroutine since a blocked read cannot be interrupted.
func (s *Session) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.scanOnce.Do(func() { go s.scan() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line.text, line.err
	}
}

func (s *Session) scan() {
	defer close(s.lines)
	for {
		line, err := s.in.ReadString('\n')
		if line != "" {
			s.lines <- inputLine{text: strings.TrimSpace(line)}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.lines <- inputLine{err: err}
			}
			return
		}
	}
}

// quotedList renders addresses as ['a', 'b'].
func quotedList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "['" + strings.Join(items, "', '") + "']"
}

func pick(list []Exchange, choice string) (Exchange, bool) {
	choice = strings.TrimSpace(choice)
	if len(choice) != 1 || choice[0] < '1' || int(choice[0]-'0') > len(list) {
		return Exchange{}, false
	}
	return list[choice[0]-'1'], true
}
