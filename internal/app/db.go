package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fpl-creator-match/internal/config"
	"github.com/riskibarqy/fpl-creator-match/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const dbPingTimeout = 5 * time.Second

// OpenDB opens the manager store with tracing and pool metrics. SQLite
// databases get their schema applied on open.
func OpenDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = logging.Default()
	}

	system := "postgresql"
	if cfg.DBDriver == config.DriverSQLite {
		system = "sqlite"
	}
	dbName := dbNameFromURL(cfg.DBDriver, cfg.DBURL)

	db, err := otelsqlx.Open(cfg.DBDriver, normalizeDBURL(cfg.DBDriver, cfg.DBURL, cfg.ServiceName),
		otelsql.WithDBSystem(system),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		// Every pooled ":memory:" connection is its own database.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}
	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithDBName(dbName), otelsql.WithDBSystem(system))

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
	}

	if err := sqlstore.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database ready", "driver", cfg.DBDriver, "db_name", dbName)
	return db, nil
}
