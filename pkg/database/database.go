package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/noah-isme/student-resources-api/pkg/config"
)

// embeddedDSN keeps a single shared in-memory database for the lifetime of the pool.
const embeddedDSN = "file:studentdb?mode=memory&cache=shared&_foreign_keys=on"

// Open returns a configured client for the driver selected by cfg, falling back to an
// embedded in-memory SQLite database when no real datasource is configured.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver := cfg.DriverName()
	dsn, err := buildDSN(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// every pooled connection must see the same in-memory database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		db.SetConnMaxLifetime(1 * time.Hour)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

func buildDSN(driver string, cfg config.DatabaseConfig) (string, error) {
	switch driver {
	case config.DriverSQLite:
		if cfg.Embedded() {
			return embeddedDSN, nil
		}
		return strings.TrimPrefix(cfg.URL, "sqlite://"), nil
	case config.DriverPostgres:
		return postgresDSN(cfg)
	case config.DriverMySQL:
		return mysqlDSN(cfg)
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func postgresDSN(cfg config.DatabaseConfig) (string, error) {
	raw := strings.TrimPrefix(cfg.URL, "jdbc:")
	if !strings.HasPrefix(raw, "postgres://") && !strings.HasPrefix(raw, "postgresql://") {
		// key=value form, credentials appended when not already present
		dsn := raw
		if cfg.User != "" && !strings.Contains(dsn, "user=") {
			dsn += " user=" + cfg.User
		}
		if cfg.Password != "" && !strings.Contains(dsn, "password=") {
			dsn += " password=" + cfg.Password
		}
		return strings.TrimSpace(dsn), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse postgres url: %w", err)
	}
	if u.User == nil && cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String(), nil
}

func mysqlDSN(cfg config.DatabaseConfig) (string, error) {
	raw := strings.TrimPrefix(cfg.URL, "jdbc:")
	var mc *mysqldriver.Config
	if strings.HasPrefix(raw, "mysql://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql url: %w", err)
		}
		mc = mysqldriver.NewConfig()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			mc.User = u.User.Username()
			mc.Passwd, _ = u.User.Password()
		}
	} else {
		parsed, err := mysqldriver.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		mc = parsed
	}
	if mc.User == "" {
		mc.User = cfg.User
	}
	if mc.Passwd == "" {
		mc.Passwd = cfg.Password
	}
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}
