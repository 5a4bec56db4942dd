package repository

import (
	"context"
	"time"

	"TAPull/internal/domain/models"
)

// PriceSource retrieves historical OHLCV rows for one symbol and date range.
type PriceSource interface {
	Fetch(ctx context.Context, symbol, startDate, endDate string) (*models.Frame, error)
	Health(ctx context.Context) error
}

// FrameCache keeps fetched payloads keyed by symbol and range.
type FrameCache interface {
	Get(ctx context.Context, key string) (*models.Frame, bool)
	Set(ctx context.Context, key string, f *models.Frame) error
}

// Publisher fans out computed indicator tables.
type Publisher interface {
	PublishIndicators(ctx context.Context, it *models.IndicatorTable) error
	Close() error
}

// Storage persists computed indicator tables.
type Storage interface {
	Init(ctx context.Context) error // ensure tables
	StoreIndicators(ctx context.Context, it *models.IndicatorTable) error
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordFetch(rows int, d time.Duration)
	RecordCompute(rows int, d time.Duration)
	RecordCacheHit(hit bool)
	RecordError(kind string)
	RecordSink(sink string, ok bool)
}
