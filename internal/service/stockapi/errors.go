package stockapi

import (
	"errors"
	"fmt"
)

// Kind classifies an acquisition failure.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindHTTPStatus Kind = "http_status"
	KindFormat     Kind = "format"
	KindEmpty      Kind = "empty"
)

// Sentinels for errors.Is. A *StockDataError matches the sentinel of its Kind.
var (
	ErrTimeout    = errors.New("stock api: timeout")
	ErrConnection = errors.New("stock api: connection")
	ErrHTTPStatus = errors.New("stock api: http status")
	ErrFormat     = errors.New("stock api: invalid format")
	ErrEmpty      = errors.New("stock api: empty result")
)

var sentinels = map[Kind]error{
	KindTimeout:    ErrTimeout,
	KindConnection: ErrConnection,
	KindHTTPStatus: ErrHTTPStatus,
	KindFormat:     ErrFormat,
	KindEmpty:      ErrEmpty,
}

// StockDataError is the single error type Fetch returns. The lower-level cause
// is logged, not carried; Status is set only for KindHTTPStatus.
type StockDataError struct {
	Kind    Kind
	Symbol  string
	Status  int
	Message string
}

func (e *StockDataError) Error() string { return e.Message }

func (e *StockDataError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func timeoutError(symbol string) *StockDataError {
	return &StockDataError{Kind: KindTimeout, Symbol: symbol,
		Message: fmt.Sprintf("Request timeout for symbol %s", symbol)}
}

func connectionError(symbol string) *StockDataError {
	return &StockDataError{Kind: KindConnection, Symbol: symbol,
		Message: fmt.Sprintf("Connection error for symbol %s", symbol)}
}

func statusError(symbol string, status int) *StockDataError {
	return &StockDataError{Kind: KindHTTPStatus, Symbol: symbol, Status: status,
		Message: fmt.Sprintf("API returned error %d for symbol %s", status, symbol)}
}

func formatError(symbol string) *StockDataError {
	return &StockDataError{Kind: KindFormat, Symbol: symbol,
		Message: fmt.Sprintf("Invalid response format for symbol %s", symbol)}
}

func noDataError(symbol string) *StockDataError {
	return &StockDataError{Kind: KindEmpty, Symbol: symbol,
		Message: fmt.Sprintf("No data returned for symbol %s", symbol)}
}

func emptyDatasetError(symbol string) *StockDataError {
	return &StockDataError{Kind: KindEmpty, Symbol: symbol,
		Message: fmt.Sprintf("Empty dataset returned for symbol %s", symbol)}
}
