package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/inkwell/bookstore/pkg/config"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.log.Debug(event.Query, data)
}

// IsPostgres reports whether url selects the PostgreSQL backend. Anything else
// is treated as a SQLite DSN.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// CheckFTS5Support verifies FTS5 is available in the SQLite build. Title and
// author search depends on it.
func CheckFTS5Support(db *bun.DB) error {
	_, err := db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS _fts5_check USING fts5(test)")
	if err != nil {
		return errors.New("FTS5 is not enabled on this SQLite build; it is required for book search")
	}
	_, _ = db.Exec("DROP TABLE IF EXISTS _fts5_check")
	return nil
}

// New opens the store named by cfg.DatabaseURL and waits until it accepts
// queries.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	var err error
	if IsPostgres(cfg.DatabaseURL) {
		db, err = openPostgres(cfg)
	} else {
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	// Retry up to a few times to ensure that the database can connect.
	attempts := cfg.DatabaseConnectRetryCount
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		_, err = db.Exec("SELECT 1")
		if err == nil {
			break
		}
		if i < attempts-1 {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if db.Dialect().Name() == dialect.SQLite {
		if err := configureSQLite(db, cfg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

func openPostgres(cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func openSQLite(cfg *config.Config) (*bun.DB, error) {
	connector, err := sqliteConnector(sqliteshim.Driver(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// SQLITE_BUSY is retried below the database/sql layer, and all access goes
	// through one connection so writers never contend with each other.
	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries))
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// sqliteConnector prefers the driver's own connector and falls back to
// opening dsn through driver.Open.
func sqliteConnector(drv driver.Driver, dsn string) (driver.Connector, error) {
	drvCtx, ok := drv.(driver.DriverContext)
	if !ok {
		return newDriverConnector(drv, dsn), nil
	}
	connector, err := drvCtx.OpenConnector(dsn)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return connector, nil
}

func configureSQLite(db *bun.DB, cfg *config.Config) error {
	if cfg.DatabaseURL != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return errors.Wrap(err, "failed to enable WAL mode")
		}
	}

	busyTimeoutMs := cfg.DatabaseBusyTimeout.Milliseconds()
	if _, err := db.Exec("PRAGMA busy_timeout=?", busyTimeoutMs); err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	return errors.WithStack(CheckFTS5Support(db))
}
