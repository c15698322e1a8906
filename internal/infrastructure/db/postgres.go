package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kospi-treasure/internal/infrastructure/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	StatusMemory = "using_memory"
	StatusOK     = "ok"
	StatusError  = "error"
)

// Connect 建立 PostgreSQL 連線池；若未設定 DSN 則回傳 nil，呼叫端改用記憶體儲存。
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Status 回傳健康檢查用的資料庫狀態字串。
func Status(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return StatusMemory
	}
	if err := ping(ctx, db); err != nil {
		return StatusError
	}
	return StatusOK
}

func ping(ctx context.Context, db *sql.DB) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return db.PingContext(ctx)
}
