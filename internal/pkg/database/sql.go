package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/pkg/logger"
	"github.com/eventdesk/eventdesk/api/internal/pkg/metrics"
)

// ReportingDB is a database/sql connection over lib/pq shared by the bun
// reporting read model and the sqlx audit log store.
type ReportingDB struct {
	SQL  *sql.DB
	Bun  *bun.DB
	Sqlx *sqlx.DB
}

// NewReportingDB opens the lib/pq connection and wraps it for bun and sqlx
func NewReportingDB(ctx context.Context, cfg config.PostgresConfig) (*ReportingDB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open reporting connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(int(cfg.MaxConns) / 2)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping reporting connection: %w", err)
	}

	bunDB := bun.NewDB(sqlDB, pgdialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(cfg.Debug),
		bundebug.WithVerbose(cfg.Debug),
		bundebug.FromEnv("BUNDEBUG"),
	))
	bunDB.AddQueryHook(metricsHook{})

	logger.Info("opened reporting connection",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return &ReportingDB{
		SQL:  sqlDB,
		Bun:  bunDB,
		Sqlx: sqlx.NewDb(sqlDB, "postgres"),
	}, nil
}

// Close closes the shared connection
func (db *ReportingDB) Close() error {
	if db.SQL != nil {
		return db.SQL.Close()
	}
	return nil
}

// metricsHook reports bun queries to Prometheus next to the pgx tracer's numbers
type metricsHook struct{}

func (metricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (metricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := operationOf(event.Query)
	metrics.RecordDBQuery("postgres_reporting", op, time.Since(event.StartTime))
	if event.Err != nil && event.Err != sql.ErrNoRows {
		metrics.RecordDBError("postgres_reporting", op)
	}
}
