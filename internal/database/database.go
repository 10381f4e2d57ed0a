// Package database 封装名单存储所用的PostgreSQL连接
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dangban/dangban/internal/config"
	"github.com/dangban/dangban/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

const (
	// pingTimeout 建连时的探活超时
	pingTimeout = 5 * time.Second
	// slowQueryThreshold 超过该耗时的SQL记录告警日志
	slowQueryThreshold = 100 * time.Millisecond
)

// schemaDDL 名单表结构，启动时幂等建表。
// day 和 workers 以 jsonb 整体存储，排班引擎按名单粒度读写
const schemaDDL = `
CREATE TABLE IF NOT EXISTS rosters (
	id         uuid PRIMARY KEY,
	name       text NOT NULL,
	note       text NOT NULL DEFAULT '',
	day        jsonb NOT NULL,
	workers    jsonb NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
)`

// DB 带慢查询日志的连接池封装
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New 建立名单库连接并配置连接池
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开名单库连接失败: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("名单库探活失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("名单库连接成功")

	return &DB{DB: db, cfg: cfg}, nil
}

// EnsureSchema 幂等创建名单表
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("初始化名单表失败: %w", err)
	}
	return nil
}

// Close 关闭名单库连接
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("关闭名单库连接")
		return db.DB.Close()
	}
	return nil
}

// Health 健康检查
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction 在事务中执行fn，出错或panic时回滚
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("事务回滚失败: %v (原始错误: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}

	return nil
}

// Stats 返回连接池统计信息
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext 执行SQL语句并记录慢查询
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	logSlowQuery(query, time.Since(start))
	return result, err
}

// QueryContext 执行查询并记录慢查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	logSlowQuery(query, time.Since(start))
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

func logSlowQuery(query string, duration time.Duration) {
	if duration <= slowQueryThreshold {
		return
	}
	logger.Warn().
		Str("query", truncateQuery(query)).
		Dur("duration", duration).
		Msg("慢SQL查询")
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
