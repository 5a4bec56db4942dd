package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TAPull/internal/domain/models"
	domrepo "TAPull/internal/domain/repository"
	pkgch "TAPull/pkg/clickhouse"
	applogger "TAPull/pkg/logger"
)

// AllDerivedColumns is every derived column the store keeps, whether or not a
// given table carries its group.
var AllDerivedColumns = []string{
	models.ColEMA12, models.ColEMA26, models.ColSMA20, models.ColSMA50,
	models.ColRSI14, models.ColRSI30, models.ColVolumeSMA, models.ColVolumeRatio,
	models.ColMACD, models.ColMACDSignal, models.ColMACDHistogram,
	models.ColBBLower, models.ColBBMiddle, models.ColBBUpper, models.ColBBWidth, models.ColBBPosition,
	models.ColATR, models.ColReturns1D, models.ColReturns5D,
}

var baseColumns = []string{"symbol", "date", "seq", "open", "high", "low", "close", "volume"}

// Execer is the subset of *sql.DB the store uses.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// CHIndicatorStore implements Storage backed by ClickHouse.
type CHIndicatorStore struct {
	db    Execer
	table string // database-qualified, quoted
	l     *applogger.Logger
	now   func() time.Time
}

var _ domrepo.Storage = (*CHIndicatorStore)(nil)

func NewCHIndicatorStore(db Execer, database, table string, l *applogger.Logger) *CHIndicatorStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHIndicatorStore{
		db:    db,
		table: pkgch.Quote(database) + "." + pkgch.Quote(table),
		l:     l,
		now:   time.Now,
	}
}

// SchemaStatements returns the DDL for the indicator table.
func (s *CHIndicatorStore) SchemaStatements() []string {
	var cols strings.Builder
	cols.WriteString("symbol LowCardinality(String), date Date, seq UInt32, ")
	cols.WriteString("open Float64, high Float64, low Float64, close Float64, volume Float64")
	for _, c := range AllDerivedColumns {
		fmt.Fprintf(&cols, ", %s Nullable(Float64)", pkgch.Quote(c))
	}
	cols.WriteString(", computed_at DateTime")

	db := s.table[:strings.Index(s.table, ".")]
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = ReplacingMergeTree(computed_at) ORDER BY (symbol, date, seq)",
			s.table, cols.String()),
	}
}

func (s *CHIndicatorStore) Init(ctx context.Context) error {
	for _, stmt := range s.SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init indicator schema: %w", err)
		}
	}
	return nil
}

// StoreIndicators inserts every bar. Re-storing a range replaces earlier rows
// on merge. Undated bars are keyed by their row index.
func (s *CHIndicatorStore) StoreIndicators(ctx context.Context, it *models.IndicatorTable) error {
	if it == nil || it.Len() == 0 {
		return nil
	}
	start := time.Now()

	derived := make([]models.Series, len(AllDerivedColumns))
	for i, c := range AllDerivedColumns {
		derived[i], _ = it.Column(c)
	}
	computedAt := s.now().UTC().Truncate(time.Second)

	cols := append(append([]string{}, baseColumns...), AllDerivedColumns...)
	cols = append(cols, "computed_at")
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pkgch.Quote(c)
	}
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	const chunkSize = 1000
	bars := it.Table.Bars
	for lo := 0; lo < len(bars); lo += chunkSize {
		hi := min(lo+chunkSize, len(bars))

		values := make([]string, 0, hi-lo)
		args := make([]any, 0, (hi-lo)*len(cols))
		for i := lo; i < hi; i++ {
			b := bars[i]
			date, seq := b.Date.UTC(), uint32(0)
			if b.Date.IsZero() {
				date, seq = time.Unix(0, 0).UTC(), uint32(i)
			}
			args = append(args, it.Table.Symbol, date, seq, b.Open, b.High, b.Low, b.Close, b.Volume)
			for _, d := range derived {
				args = append(args, cellArg(d, i))
			}
			args = append(args, computedAt)
			values = append(values, placeholder)
		}

		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, strings.Join(quoted, ", "), strings.Join(values, ", "))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_indicators error",
				applogger.String("table", s.table),
				applogger.String("symbol", it.Table.Symbol),
				applogger.Error(err),
			)
			return fmt.Errorf("store indicators %s: %w", it.Table.Symbol, err)
		}
	}

	s.l.Info("clickhouse store_indicators ok",
		applogger.String("table", s.table),
		applogger.String("symbol", it.Table.Symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func cellArg(s models.Series, i int) any {
	if s == nil || !s[i].Valid {
		return nil
	}
	return s[i].Float64
}

func (s *CHIndicatorStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHIndicatorStore) Close() error {
	return nil // pool is owned by pkg/clickhouse.Client
}
