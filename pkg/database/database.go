package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/mru-results-api/pkg/config"
)

// NewLocal opens the local results store using the configured driver.
func NewLocal(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == config.DriverPostgres {
		return NewPostgres(cfg)
	}
	return NewMySQL(cfg)
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return finalize(db, cfg.MaxOpenConns, cfg.MaxIdleConns, 5*time.Second)
}

// NewMySQL returns a configured MySQL client for the local store.
func NewMySQL(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := MySQLDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, 0)
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return finalize(db, cfg.MaxOpenConns, cfg.MaxIdleConns, 5*time.Second)
}

// NewRemoteMySQL opens the remote Campus Dynamics source. The handle is
// returned even when the initial ping fails so that callers can surface the
// connectivity error on the sync run instead of refusing to boot.
func NewRemoteMySQL(cfg config.RemoteDatabaseConfig) (*sqlx.DB, error) {
	dsn := MySQLDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.Timeout)
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// MySQLDSN builds a go-sql-driver DSN with UTF-8 and time parsing enabled.
func MySQLDSN(host string, port int, user, password, name string, timeout time.Duration) string {
	mcfg := mysql.NewConfig()
	mcfg.User = user
	mcfg.Passwd = password
	mcfg.Net = "tcp"
	mcfg.Addr = fmt.Sprintf("%s:%d", host, port)
	mcfg.DBName = name
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC
	mcfg.Params = map[string]string{"charset": "utf8mb4"}
	if timeout > 0 {
		mcfg.Timeout = timeout
		mcfg.ReadTimeout = timeout * 6
	}
	return mcfg.FormatDSN()
}

func finalize(db *sqlx.DB, maxOpen, maxIdle int, pingTimeout time.Duration) (*sqlx.DB, error) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
