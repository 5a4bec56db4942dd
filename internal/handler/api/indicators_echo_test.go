package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models "TAPull/internal/domain/models"
	"TAPull/internal/service/ratelimit"
	"TAPull/internal/service/stockapi"
	"TAPull/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	frame     *models.Frame
	err       error
	healthErr error
	symbols   []string
}

func (s *stubSource) Fetch(_ context.Context, symbol, _, _ string) (*models.Frame, error) {
	s.symbols = append(s.symbols, symbol)
	return s.frame, s.err
}

func (s *stubSource) Health(context.Context) error { return s.healthErr }

func priceFrame(n int) *models.Frame {
	recs := make([]models.Record, n)
	for i := range recs {
		c := 10 + float64(i%7)
		recs[i] = models.Record{
			"date":        fmt.Sprintf("2024-01-%02d", i+1),
			"open_price":  c,
			"high_price":  c + 1,
			"low_price":   c - 1,
			"close_price": c,
			"volume":      500.0,
		}
	}
	return models.NewFrame(recs...)
}

func newEcho(src *stubSource, rl *ratelimit.Limiter) *echo.Echo {
	e := echo.New()
	uc := usecase.NewIndicatorsUseCase(src, nil, nil, nil, nil, nil)
	NewIndicatorsEchoHandler(nil, uc, src, rl).RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

const query = "/api/indicators?symbol=aapl&start_date=2024-01-01&end_date=2024-01-31"

func TestIndicators_JSON(t *testing.T) {
	src := &stubSource{frame: priceFrame(30)}
	rec := get(newEcho(src, nil), query)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL"}, src.symbols)

	env := decode(t, rec)
	var body struct {
		Symbol  string   `json:"symbol"`
		Count   int      `json:"count"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "AAPL", body.Symbol)
	assert.Equal(t, 30, body.Count)
	assert.Equal(t, []string{"date", "open", "high", "low", "close", "volume"}, body.Columns[:6])
	assert.Contains(t, body.Columns, models.ColMACD)
	assert.Contains(t, body.Columns, models.ColBBPosition)
	require.Len(t, body.Rows, 30)
	assert.Len(t, body.Rows[0], len(body.Columns))
	// sma_20 is undefined on the first row
	assert.Nil(t, body.Rows[0][6+2])
}

func TestIndicators_CSV(t *testing.T) {
	src := &stubSource{frame: priceFrame(5)}
	rec := get(newEcho(src, nil), query+"&format=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "AAPL_indicators.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "date,open,high,low,close,volume,ema_12"))
}

func TestIndicators_MissingSymbol(t *testing.T) {
	src := &stubSource{frame: priceFrame(5)}
	rec := get(newEcho(src, nil), "/api/indicators?start_date=2024-01-01&end_date=2024-01-31")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"symbol"`)
	assert.Empty(t, src.symbols)
}

func TestIndicators_BadFormat(t *testing.T) {
	rec := get(newEcho(&stubSource{}, nil), query+"&format=xml")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_ONEOF")
}

func TestIndicators_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		src  *stubSource
		code int
	}{
		{"empty", &stubSource{err: &stockapi.StockDataError{Kind: stockapi.KindEmpty, Message: "No data returned for symbol AAPL"}}, http.StatusNotFound},
		{"timeout", &stubSource{err: &stockapi.StockDataError{Kind: stockapi.KindTimeout, Message: "API request timed out for symbol AAPL"}}, http.StatusGatewayTimeout},
		{"upstream status", &stubSource{err: &stockapi.StockDataError{Kind: stockapi.KindHTTPStatus, Status: 500, Message: "API request failed with status 500"}}, http.StatusBadGateway},
		{"connection", &stubSource{err: &stockapi.StockDataError{Kind: stockapi.KindConnection, Message: "Failed to connect to API"}}, http.StatusBadGateway},
		{"schema", &stubSource{frame: models.NewFrame(models.Record{"close": 1.0})}, http.StatusUnprocessableEntity},
		{"order", &stubSource{frame: models.NewFrame(
			models.Record{"date": "2024-01-02", "open": 1.0, "high": 1.0, "low": 1.0, "close": 1.0, "volume": 1.0},
			models.Record{"date": "2024-01-01", "open": 1.0, "high": 1.0, "low": 1.0, "close": 1.0, "volume": 1.0},
		)}, http.StatusUnprocessableEntity},
		{"internal", &stubSource{err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(newEcho(tc.src, nil), query)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec).Status)
		})
	}
}

func TestIndicators_SchemaErrorListsMissing(t *testing.T) {
	src := &stubSource{frame: models.NewFrame(models.Record{"close": 1.0})}
	rec := get(newEcho(src, nil), query)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns: [open, high, low, volume]")
}

func TestIndicators_RateLimited(t *testing.T) {
	src := &stubSource{frame: priceFrame(5)}
	e := newEcho(src, ratelimit.New(1, 0.0001))

	assert.Equal(t, http.StatusOK, get(e, query).Code)
	rec := get(e, query)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
	assert.Len(t, src.symbols, 1)
}

func TestHealth(t *testing.T) {
	rec := get(newEcho(&stubSource{}, nil), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = get(newEcho(&stubSource{healthErr: errors.New("down")}, nil), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}
