package service

import (
	"context"

	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/response"
)

// Repository reads and writes rows of a single table. Failures are reported in the
// returned envelope, never as a panic.
type Repository[T any] interface {
	Select(ctx context.Context, options request.QueryOptions) response.Result[[]T]
	Insert(ctx context.Context, values request.Values) response.Result[*T]
	Update(ctx context.Context, id interface{}, values request.Values) response.Result[*T]
	Delete(ctx context.Context, id interface{}) response.DeleteResult
	FindByID(ctx context.Context, id interface{}) response.Result[*T]
	FindOne(ctx context.Context, criteria request.Values) response.Result[*T]
	Table() TableInfo
}

// TableInfo describes a registered table
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}
