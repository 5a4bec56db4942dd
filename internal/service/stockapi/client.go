package stockapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TAPull/internal/domain/models"
	drepo "TAPull/internal/domain/repository"
	"TAPull/pkg/http"
	"TAPull/pkg/logger"
)

const userAgent = "tapull-indicators"

// Client fetches historical OHLCV rows from the stock data API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

var _ drepo.PriceSource = (*Client)(nil)

// Option configures Client.
type Option func(*clientOptions)

type clientOptions struct {
	log     *logger.Logger
	httpOps []http.ClientOption
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithHTTPOptions passes options through to the transport client.
func WithHTTPOptions(opts ...http.ClientOption) Option {
	return func(o *clientOptions) { o.httpOps = append(o.httpOps, opts...) }
}

// New builds a client for baseURL. The timeout bounds each request.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	o := &clientOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	httpOpts := append([]http.ClientOption{
		http.WithTimeout(timeout),
		http.WithUserAgent(userAgent),
	}, o.httpOps...)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.NewClient(httpOpts...),
		log:     o.log,
	}
}

// Fetch retrieves rows for symbol between startDate and endDate. The dates are
// passed through verbatim. One attempt is made; every failure is a *StockDataError.
func (c *Client) Fetch(ctx context.Context, symbol, startDate, endDate string) (*models.Frame, error) {
	log := c.log.With(
		logger.String("symbol", symbol),
		logger.String("start_date", startDate),
		logger.String("end_date", endDate),
	)

	body, err := c.http.Fetch(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/get",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"start_date": {startDate},
			"end_date":   {endDate},
		},
	})
	if err != nil {
		return nil, c.fail(log, classify(symbol, err), err)
	}

	frame, err := models.DecodeFrame(body)
	if err != nil {
		return nil, c.fail(log, formatError(symbol), err)
	}
	if len(frame.Records) == 0 {
		return nil, c.fail(log, noDataError(symbol), nil)
	}
	if frame.Empty() {
		return nil, c.fail(log, emptyDatasetError(symbol), nil)
	}
	if missing := models.MissingRequired(frame.Columns); len(missing) > 0 {
		return nil, c.fail(log, formatError(symbol), fmt.Errorf("missing required fields %v", missing))
	}

	log.Debug("fetched stock data", logger.Int("rows", len(frame.Records)), logger.Strings("columns", frame.Columns))
	return frame, nil
}

// Health probes GET {base}/health and succeeds only on 200.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.SendRequest(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/health",
	})
	if err != nil {
		return fmt.Errorf("stock api health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stock api health: status %d", resp.StatusCode)
	}
	return nil
}

func classify(symbol string, err error) *StockDataError {
	var se *http.StatusError
	switch {
	case errors.As(err, &se):
		return statusError(symbol, se.Code)
	case http.IsTimeout(err):
		return timeoutError(symbol)
	default:
		return connectionError(symbol)
	}
}

func (c *Client) fail(log *logger.Logger, e *StockDataError, cause error) error {
	fields := []logger.Field{logger.String("kind", string(e.Kind))}
	if e.Status != 0 {
		fields = append(fields, logger.Int("status", e.Status))
	}
	if cause != nil {
		fields = append(fields, logger.Error(cause))
	}
	log.Error(e.Message, fields...)
	return e
}
