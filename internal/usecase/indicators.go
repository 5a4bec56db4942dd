package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TAPull/internal/domain/models"
	drepo "TAPull/internal/domain/repository"
	"TAPull/internal/repository"
	"TAPull/internal/service/stockapi"
	"TAPull/internal/services/features"
	applogger "TAPull/pkg/logger"
	"TAPull/pkg/metrics"
)

// IndicatorsUseCase fetches a symbol's history and derives its indicator table.
// The cache and both sinks are optional.
type IndicatorsUseCase struct {
	source  drepo.PriceSource
	cache   drepo.FrameCache
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	l       *applogger.Logger
}

func NewIndicatorsUseCase(
	source drepo.PriceSource,
	cache drepo.FrameCache,
	pub drepo.Publisher,
	store drepo.Storage,
	m drepo.Metrics,
	l *applogger.Logger,
) *IndicatorsUseCase {
	if m == nil {
		m = metrics.Nop{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &IndicatorsUseCase{source: source, cache: cache, pub: pub, store: store, metrics: m, l: l}
}

type RunParams struct {
	Symbol    string
	StartDate string
	EndDate   string
}

type RunResult struct {
	Symbol    string
	StartDate string
	EndDate   string
	Cached    bool
	Table     *models.IndicatorTable
}

// Run executes fetch then compute. Fetch and compute failures are returned
// unchanged; sink failures are logged and counted only.
func (uc *IndicatorsUseCase) Run(ctx context.Context, p RunParams) (*RunResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	log := uc.l.With(applogger.String("symbol", p.Symbol))

	frame, cached, err := uc.fetch(ctx, p)
	if err != nil {
		uc.metrics.RecordError(ErrorKind(err))
		return nil, err
	}

	start := time.Now()
	it, err := features.ComputeFrame(p.Symbol, frame)
	if err != nil {
		uc.metrics.RecordError(ErrorKind(err))
		log.Error("compute indicators failed", applogger.Error(err))
		return nil, err
	}
	uc.metrics.RecordCompute(it.Len(), time.Since(start))
	log.Debug("indicators computed",
		applogger.Int("rows", it.Len()),
		applogger.Strings("derived", it.DerivedColumns()),
	)

	uc.emit(ctx, log, it)

	return &RunResult{
		Symbol:    p.Symbol,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Cached:    cached,
		Table:     it,
	}, nil
}

func (uc *IndicatorsUseCase) fetch(ctx context.Context, p RunParams) (*models.Frame, bool, error) {
	key := repository.FrameKey(p.Symbol, p.StartDate, p.EndDate)
	if uc.cache != nil {
		if f, ok := uc.cache.Get(ctx, key); ok {
			uc.metrics.RecordCacheHit(true)
			return f, true, nil
		}
		uc.metrics.RecordCacheHit(false)
	}

	start := time.Now()
	f, err := uc.source.Fetch(ctx, p.Symbol, p.StartDate, p.EndDate)
	if err != nil {
		return nil, false, err
	}
	uc.metrics.RecordFetch(len(f.Records), time.Since(start))

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, f); err != nil {
			uc.metrics.RecordError("cache")
			uc.l.Warn("frame cache set failed", applogger.String("symbol", p.Symbol), applogger.Error(err))
		}
	}
	return f, false, nil
}

func (uc *IndicatorsUseCase) emit(ctx context.Context, log *applogger.Logger, it *models.IndicatorTable) {
	if uc.pub != nil {
		err := uc.pub.PublishIndicators(ctx, it)
		uc.metrics.RecordSink("kafka", err == nil)
		if err != nil {
			log.Error("publish indicators failed", applogger.Error(err))
		}
	}
	if uc.store != nil {
		err := uc.store.StoreIndicators(ctx, it)
		uc.metrics.RecordSink("clickhouse", err == nil)
		if err != nil {
			log.Error("store indicators failed", applogger.Error(err))
		}
	}
}

// ErrorKind maps an error from Run to a low-cardinality metrics label.
func ErrorKind(err error) string {
	var (
		sde *stockapi.StockDataError
		se  *models.SchemaError
		oe  *features.OrderError
	)
	switch {
	case errors.As(err, &sde):
		return "fetch_" + string(sde.Kind)
	case errors.As(err, &se):
		return "schema"
	case errors.As(err, &oe):
		return "order"
	case errors.Is(err, models.ErrEmptyTable):
		return "empty"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// Close releases the sinks.
func (uc *IndicatorsUseCase) Close() {
	if uc.pub != nil {
		_ = uc.pub.Close()
	}
	if uc.store != nil {
		_ = uc.store.Close()
	}
}
