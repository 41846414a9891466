package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxFunc 事务内执行的函数
type TxFunc func(tx *gorm.DB) error

// Transaction 在事务中执行 fn，返回错误时回滚
func (db *DB) Transaction(ctx context.Context, fn TxFunc) error {
	return db.DB.WithContext(ctx).Transaction(fn)
}

// TransactionManager 事务管理器，序列化冲突时重试
type TransactionManager struct {
	db *DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// ExecuteWithRetry 执行事务，遇到序列化失败或死锁时重试
func (tm *TransactionManager) ExecuteWithRetry(ctx context.Context, maxRetries int, fn TxFunc) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = tm.db.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return err
		}

		tm.db.logger.Warn("transaction failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		// 线性退避
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}

	return fmt.Errorf("transaction failed after %d retries: %w", maxRetries, err)
}

// IsRetryableError reports postgres serialization_failure and deadlock_detected
func IsRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
