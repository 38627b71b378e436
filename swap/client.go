package swap

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nekowawolf/banano-trade-bot/logger"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

type ClientParams struct {
	Timeout   time.Duration // Timeout for a whole request, zero means none.
	UserAgent string
}

// Client is the HTTP session shared by every request of a run.
type Client struct {
	client    *http.Client
	userAgent string
}

func NewClient(params ClientParams) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &Client{
		client: &http.Client{
			Timeout:   params.Timeout,
			Transport: transport,
		},
		userAgent: params.UserAgent,
	}
}

// CloseIdleConnections releases the pooled connections of the session.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Op: req.Method + " " + req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Op: "read " + req.URL.String(), Err: err}
	}

	logger.Log.Debugw("http request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return body, resp.StatusCode, nil
}

// NetworkError marks failures of the transport itself, as opposed to
// responses the exchange did not like.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
