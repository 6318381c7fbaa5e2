package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/PayRam/go-dbclient/response"
	"github.com/PayRam/go-dbclient/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Client is the handle shared by every repository. Inside a transaction it is bound
// to the transaction's connection.
type Client struct {
	DB     *gorm.DB
	logger *zap.Logger
	seen   *reportLog // set inside a transaction
}

func NewClient(db *gorm.DB, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{DB: db, logger: logger.Named("dbclient")}
}

// run is the boundary of every operation: errors and panics become a failed
// envelope and are logged exactly once.
func run[T any](c *Client, op, table string, fn func() (T, *int64, error)) (result response.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w during %s: %v", service.ErrPanic, op, p)
			c.report(op, table, err)
			result = response.Failure[T](err)
		}
	}()

	data, count, err := fn()
	if err != nil {
		c.report(op, table, err)
		return response.Failure[T](err)
	}
	result = response.Success(data)
	result.Count = count
	return result
}

func (c *Client) report(op, table string, err error) {
	if c.seen != nil {
		c.seen.add(err)
	}
	var logged reportedError
	if errors.As(err, &logged) {
		return
	}

	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
	if table != "" {
		fields = append(fields, zap.String("table", table))
	}

	if service.IsValidation(err) {
		c.logger.Warn("Database operation rejected", fields...)
		return
	}
	c.logger.Error("Database operation failed", fields...)
}

// reportLog remembers the failures already logged inside one transaction
type reportLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *reportLog) add(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *reportLog) contains(err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, seen := range l.errs {
		if errors.Is(err, seen) {
			return true
		}
	}
	return false
}

// reportedError marks a failure that was logged where it happened
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func storeError(action, table string, err error) error {
	return fmt.Errorf("%w: failed to %s %s: %w", service.ErrStore, action, table, err)
}

// Raw runs a hand written statement after screening it against the denylist.
// Rows are scanned into T, use map[string]interface{} for ad-hoc shapes.
func Raw[T any](ctx context.Context, c *Client, query string, params ...interface{}) response.Result[[]T] {
	return run(c, "raw", "", func() ([]T, *int64, error) {
		if err := CheckQuery(query); err != nil {
			return nil, nil, err
		}

		rows := make([]T, 0)
		if err := c.DB.WithContext(ctx).Raw(query, params...).Scan(&rows).Error; err != nil {
			return nil, nil, fmt.Errorf("%w: failed to execute raw query: %w", service.ErrStore, err)
		}
		if maps, ok := interface{}(&rows).(*[]map[string]interface{}); ok {
			for _, row := range *maps {
				derefValues(row)
			}
		}
		return rows, nil, nil
	})
}

// derefValues unwraps the pointers some drivers leave behind for computed columns
func derefValues(row map[string]interface{}) {
	for key, value := range row {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.Kind() != reflect.Pointer {
			continue
		}
		for (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && !rv.IsNil() {
			rv = rv.Elem()
		}
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			row[key] = nil
			continue
		}
		row[key] = rv.Interface()
	}
}

// Transaction runs fn against a client bound to a single transaction. It commits
// when fn returns nil and rolls back on an error or a panic. A failure already
// logged by an operation inside fn is not logged again for the rollback.
func Transaction[T any](ctx context.Context, c *Client, fn func(tx *Client) (T, error)) response.Result[T] {
	seen := &reportLog{}
	return run(c, "transaction", "", func() (T, *int64, error) {
		var out T
		err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			data, err := fn(&Client{DB: tx, logger: c.logger, seen: seen})
			if err != nil {
				return err
			}
			out = data
			return nil
		})
		if err == nil {
			return out, nil, nil
		}

		var zero T
		failure := fmt.Errorf("%w: transaction rolled back: %w", service.ErrStore, err)
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrStore) {
			failure = fmt.Errorf("transaction rolled back: %w", err)
		}
		if seen.contains(err) {
			return zero, nil, reportedError{failure}
		}
		return zero, nil, failure
	})
}
