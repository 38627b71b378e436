package swap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type mockTrader struct {
	mock.Mock
}

func (m *mockTrader) FetchPrice(ctx context.Context, apiURL string) (PriceQuote, error) {
	args := m.Called(ctx, apiURL)
	return args.Get(0).(PriceQuote), args.Error(1)
}

func (m *mockTrader) SubmitTrade(ctx context.Context, ex Exchange, req TradeRequest) (TradeResult, error) {
	args := m.Called(ctx, ex, req)
	return args.Get(0).(TradeResult), args.Error(1)
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func matchRequest(number int, main, coin string, direction Direction) interface{} {
	return mock.MatchedBy(func(req TradeRequest) bool {
		return req == TradeRequest{Number: number, MainAddress: main, CoinAddress: coin, Direction: direction}
	})
}

func resultFor(number int) TradeResult {
	return TradeResult{
		Number:         number,
		ReceiveLabel:   "Nano receive address",
		ReceiveAddress: nanoAddr,
		RefundLabel:    "Banano refund address",
		RefundAddress:  bananoAddr,
		DepositAddress: "ban_deposit",
		ExplorerURL:    "https://blocklattice.io/account/" + nanoAddr,
	}
}

var testQuote = PriceQuote{BuyPrice: 0.5, SellPrice: 0.4, MaxBuy: 1000, MaxSell: 2000}

func TestSession_Run(t *testing.T) {
	trader := new(mockTrader)
	trader.On("FetchPrice", mock.Anything, "https://banano.nano.trade").Return(testQuote, nil).Once()
	trader.On("SubmitTrade", mock.Anything, mock.Anything, matchRequest(1, nanoAddr, bananoAddr, Sell)).Return(resultFor(1), nil).Once()
	trader.On("SubmitTrade", mock.Anything, mock.Anything, matchRequest(2, nanoAddr2, bananoAddr2, Sell)).Return(resultFor(2), nil).Once()

	in := strings.NewReader(lines(
		"9",
		"1",
		"3",
		"2",
		nanoAddr+" "+nanoAddr2,
		bananoAddr+"  "+bananoAddr2,
	))
	var out bytes.Buffer

	err := NewSession(in, &out, trader, Exchanges()).Run(context.Background())
	require.NoError(t, err)
	trader.AssertExpectations(t)

	text := out.String()
	assert.Contains(t, text, "Using Nano ↔ Banano exchange")
	assert.Contains(t, text, "You picked: Sell Banano")
	assert.Contains(t, text, "Buy Price: 1 NANO:2.0 BAN - Max Buy: 1,000 NANO")
	assert.Contains(t, text, "Sell Price: 2.5 BAN:1 NANO - Max Sell: 2,000 BAN")
	assert.Contains(t, text, "DEPOSIT ADDRESS: ban_deposit")
	assert.Contains(t, text, "Result: https://blocklattice.io/account/"+nanoAddr)
	assert.Contains(t, text, "Completed 2/2 trades")

	first := strings.Index(text, "Number 1")
	second := strings.Index(text, "Number 2")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Equal(t, 2, strings.Count(text, strings.Repeat("-", 102)+"\n"+"Nano receive address"))
}

func TestSession_Run_PriceFailure(t *testing.T) {
	trader := new(mockTrader)
	trader.On("FetchPrice", mock.Anything, "https://solana.banano.trade").Return(PriceQuote{}, errors.New("boom")).Once()

	var out bytes.Buffer
	err := NewSession(strings.NewReader(lines("2", "1")), &out, trader, Exchanges()).Run(context.Background())

	assert.NoError(t, err, "a reported price failure ends the run normally")
	assert.Contains(t, out.String(), "Failed to fetch prices: boom")
	trader.AssertNotCalled(t, "SubmitTrade", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_Run_LengthMismatch(t *testing.T) {
	trader := new(mockTrader)
	trader.On("FetchPrice", mock.Anything, mock.Anything).Return(PriceQuote{BuyPrice: 650, SellPrice: 600, MaxBuy: 1e5, MaxSell: 50}, nil)

	in := strings.NewReader(lines(
		"3",
		"1",
		bananoAddr+" "+bananoAddr2,
		polyAddr,
	))
	var out bytes.Buffer

	err := NewSession(in, &out, trader, Exchanges()).Run(context.Background())

	assert.NoError(t, err, "a reported length mismatch ends the run normally")
	assert.Contains(t, out.String(), "Error! Banano and USDT address lists must have the same length!")
	trader.AssertNotCalled(t, "SubmitTrade", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_ReadAddresses_Reprompts(t *testing.T) {
	in := strings.NewReader(lines(
		"",
		"not-an-address",
		solanaAddr+" "+polyAddr,
		solanaAddr,
	))
	var out bytes.Buffer

	got, err := NewSession(in, &out, nil, Exchanges()).ReadAddresses(context.Background(), "Solana", ValidSolana)
	require.NoError(t, err)

	assert.Equal(t, []string{solanaAddr}, got)
	assert.Contains(t, out.String(), "List of Solana addresses: ['"+solanaAddr+"']")
	assert.Equal(t, 1, strings.Count(out.String(), "Please enter at least one Solana address."))
	assert.Equal(t, 2, strings.Count(out.String(), "Sorry, one or more addresses are not valid Solana addresses."))
	assert.Equal(t, 4, strings.Count(out.String(), "Enter receive/refund Solana address: "))
}

func TestSession_ReadAddresses_LastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	got, err := NewSession(strings.NewReader(nanoAddr), &out, nil, Exchanges()).ReadAddresses(context.Background(), "Nano", ValidNano)

	require.NoError(t, err)
	assert.Equal(t, []string{nanoAddr}, got)
}

func TestSession_InputClosed(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(strings.NewReader(lines("7")), &out, nil, Exchanges())

	_, err := session.SelectExchange(context.Background())
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestSession_SelectDirection(t *testing.T) {
	ex := mustLookup(t, "2")

	tests := []struct {
		input string
		want  Direction
	}{
		{lines("1"), Buy},
		{lines("x", "3", " 2 "), Sell},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := NewSession(strings.NewReader(tt.input), &out, nil, Exchanges()).SelectDirection(context.Background(), ex)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Contains(t, out.String(), "1) Buy Solana\n2) Sell Solana\n")
	}
}

func TestSession_ProcessBatch_IsolatesFailures(t *testing.T) {
	ex := mustLookup(t, "1")
	mains := []string{nanoAddr, nanoAddr2, nanoAddr}
	coins := []string{bananoAddr, bananoAddr2, bananoAddr2}

	trader := new(mockTrader)
	trader.On("SubmitTrade", mock.Anything, mock.Anything, matchRequest(1, mains[0], coins[0], Buy)).
		Return(TradeResult{}, &NetworkError{Op: "POST /buy", Err: errors.New("connection refused")}).Once()
	trader.On("SubmitTrade", mock.Anything, mock.Anything, matchRequest(2, mains[1], coins[1], Buy)).
		Return(TradeResult{}, ErrServerRejected).Once()
	trader.On("SubmitTrade", mock.Anything, mock.Anything, matchRequest(3, mains[2], coins[2], Buy)).
		Return(resultFor(3), nil).Once()

	var out bytes.Buffer
	summary, err := NewSession(strings.NewReader(""), &out, trader, Exchanges()).ProcessBatch(context.Background(), ex, Buy, mains, coins)
	require.NoError(t, err)
	trader.AssertExpectations(t)

	assert.Equal(t, BatchSummary{Total: 3, Succeeded: 1}, summary)
	text := out.String()
	assert.Contains(t, text, "Network error: connection refused")
	assert.Contains(t, text, "Server error or incorrect address, try again!")
	assert.Contains(t, text, "Number 3")
	assert.NotContains(t, text, "Number 1")
	assert.NotContains(t, text, "Number 2")
}

func TestSession_ProcessBatch_UnexpectedError(t *testing.T) {
	ex := mustLookup(t, "1")

	trader := new(mockTrader)
	trader.On("SubmitTrade", mock.Anything, mock.Anything, mock.Anything).Return(TradeResult{}, ErrNoDepositAddress).Once()

	var out bytes.Buffer
	summary, err := NewSession(strings.NewReader(""), &out, trader, Exchanges()).
		ProcessBatch(context.Background(), ex, Sell, []string{nanoAddr}, []string{bananoAddr})
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Total: 1}, summary)
	assert.Contains(t, out.String(), "Error processing trade: could not parse deposit address from response")
}

func TestSession_ProcessBatch_Cancelled(t *testing.T) {
	ex := mustLookup(t, "1")
	ctx, cancel := context.WithCancel(context.Background())

	trader := new(mockTrader)
	trader.On("SubmitTrade", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(resultFor(1), nil).Once()

	var out bytes.Buffer
	summary, err := NewSession(strings.NewReader(""), &out, trader, Exchanges()).
		ProcessBatch(ctx, ex, Sell, []string{nanoAddr, nanoAddr2}, []string{bananoAddr, bananoAddr2})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Succeeded)
	trader.AssertNumberOfCalls(t, "SubmitTrade", 1)
}

func TestSession_SelectExchange_Menu(t *testing.T) {
	var out bytes.Buffer
	ex, err := NewSession(strings.NewReader(lines("3")), &out, nil, Exchanges()).SelectExchange(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "usdt_banano", ex.Key)
	assert.Contains(t, out.String(), "Select Exchange:\n"+
		"1) Nano ↔ Banano (banano.nano.trade)\n"+
		"2) Solana ↔ Banano (solana.banano.trade)\n"+
		"3) USDT ↔ Banano (usdt.banano.trade) [Polygon]\n")
	assert.Contains(t, out.String(), "Using USDT ↔ Banano (Polygon) exchange")
}

func TestSession_Run_CancelledAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	trader := new(mockTrader)
	ctx, cancel := context.WithCancel(context.Background())

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- NewSession(pr, &out, trader, Exchanges()).Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
	trader.AssertNotCalled(t, "FetchPrice", mock.Anything, mock.Anything)
}

func TestSession_ReadAddresses_CancelledWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(pr, io.Discard, nil, Exchanges())

	go func() {
		// one invalid line keeps the prompt looping, then the user hits Ctrl-C
		pw.Write([]byte("nope\n"))
		cancel()
	}()

	_, err := session.ReadAddresses(ctx, "Nano", ValidNano)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuotedList(t *testing.T) {
	assert.Equal(t, "['a', 'b']", quotedList([]string{"a", "b"}))
	assert.Equal(t, "[]", quotedList(nil))
}
