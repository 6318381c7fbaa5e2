package serviceimpl

import (
	"context"
	"errors"
	"strings"

	"github.com/PayRam/go-dbclient/internal/db"
	"github.com/PayRam/go-dbclient/models"
	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/response"
	"github.com/PayRam/go-dbclient/service"
	"github.com/PayRam/go-dbclient/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository[T any] struct {
	client *Client
	table  *Table
}

var _ service.Repository[models.User] = &repository[models.User]{}

// NewRepository binds the model T to its table
func NewRepository[T any](client *Client) (*repository[T], error) {
	table, err := NewTable(client.DB, new(T))
	if err != nil {
		return nil, err
	}
	return &repository[T]{client: client, table: table}, nil
}

func (r *repository[T]) Table() service.TableInfo {
	return r.table.Info()
}

func (r *repository[T]) Select(ctx context.Context, options request.QueryOptions) response.Result[[]T] {
	return run(r.client, "select", r.table.Name, func() ([]T, *int64, error) {
		exprs, err := r.filters(ctx, options.Filters)
		if err != nil {
			return nil, nil, err
		}

		if err := request.ValidatePagination(options); err != nil {
			return nil, nil, service.NewValidationError("pagination", service.ErrInvalidValue, "%v", err)
		}

		desc, err := request.ParseDirection(options.OrderDirection)
		if err != nil {
			return nil, nil, service.NewValidationError("orderDirection", service.ErrInvalidValue, "%v", err)
		}

		orderBy := ""
		if options.OrderBy != nil && *options.OrderBy != "" {
			field, err := r.table.Resolve(*options.OrderBy)
			if err != nil {
				return nil, nil, err
			}
			orderBy = field.DBName
		}

		// the page and the count share the predicates but not the statement
		where := func(tx *gorm.DB) *gorm.DB {
			if len(exprs) == 0 {
				return tx
			}
			return tx.Clauses(clause.Where{Exprs: exprs})
		}

		query := r.client.DB.WithContext(ctx).Model(new(T)).Scopes(where)
		if orderBy != "" {
			query = request.ApplyOrder(query, orderBy, desc)
		}
		query = request.ApplyPaginationConditions(query, options)

		rows := make([]T, 0)
		if err := query.Find(&rows).Error; err != nil {
			return nil, nil, storeError("select from", r.table.Name, err)
		}

		if !options.Paginated() {
			return rows, nil, nil
		}

		var count int64
		if err := r.client.DB.WithContext(ctx).Model(new(T)).Scopes(where).Count(&count).Error; err != nil {
			return nil, nil, storeError("count rows of", r.table.Name, err)
		}
		return rows, &count, nil
	})
}

func (r *repository[T]) Insert(ctx context.Context, values request.Values) response.Result[*T] {
	return run(r.client, "insert", r.table.Name, func() (*T, *int64, error) {
		if len(values) == 0 {
			return nil, nil, service.NewValidationError("", service.ErrInvalidValue, "no values provided for insert")
		}

		clean, err := sanitizeValues(values)
		if err != nil {
			return nil, nil, err
		}

		row := new(T)
		if err := r.table.Assign(ctx, row, clean); err != nil {
			return nil, nil, err
		}

		if err := r.client.DB.WithContext(ctx).Create(row).Error; err != nil {
			return nil, nil, storeError("insert into", r.table.Name, err)
		}
		return row, nil, nil
	})
}

// Update applies values to the row keyed by id. A missing row is not an error: Data
// is nil.
func (r *repository[T]) Update(ctx context.Context, id interface{}, values request.Values) response.Result[*T] {
	return run(r.client, "update", r.table.Name, func() (*T, *int64, error) {
		if id == nil {
			return nil, nil, service.NewValidationError("id", service.ErrInvalidValue, "id is required")
		}

		clean, err := sanitizeValues(values)
		if err != nil {
			return nil, nil, err
		}

		changes, err := r.table.Changes(ctx, clean)
		if err != nil {
			return nil, nil, err
		}
		if r.table.updated != nil {
			changes[r.table.updated.DBName] = r.client.DB.NowFunc()
		}
		if len(changes) == 0 {
			return nil, nil, service.NewValidationError("", service.ErrInvalidValue, "no updatable values provided")
		}

		result := r.client.DB.WithContext(ctx).Model(new(T)).Clauses(r.table.ByID(id)).Updates(changes)
		if result.Error != nil {
			return nil, nil, storeError("update", r.table.Name, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, nil, nil
		}

		return r.first(ctx, []clause.Expression{r.table.ByID(id)})
	})
}

// Delete removes the row keyed by id. Deleting a row that does not exist succeeds.
func (r *repository[T]) Delete(ctx context.Context, id interface{}) response.DeleteResult {
	result := run(r.client, "delete", r.table.Name, func() (bool, *int64, error) {
		if id == nil {
			return false, nil, service.NewValidationError("id", service.ErrInvalidValue, "id is required")
		}

		if err := r.client.DB.WithContext(ctx).Unscoped().Clauses(r.table.ByID(id)).Delete(new(T)).Error; err != nil {
			return false, nil, storeError("delete from", r.table.Name, err)
		}
		return true, nil, nil
	})
	return response.DeleteResult{Success: result.Data, Error: result.Error}
}

func (r *repository[T]) FindByID(ctx context.Context, id interface{}) response.Result[*T] {
	return run(r.client, "findById", r.table.Name, func() (*T, *int64, error) {
		if id == nil {
			return nil, nil, service.NewValidationError("id", service.ErrInvalidValue, "id is required")
		}
		return r.first(ctx, []clause.Expression{r.table.ByID(id)})
	})
}

// FindOne returns the first row equal to every criteria value. Email criteria are
// normalised the way Insert stores them.
func (r *repository[T]) FindOne(ctx context.Context, criteria request.Values) response.Result[*T] {
	return run(r.client, "findOne", r.table.Name, func() (*T, *int64, error) {
		if len(criteria) == 0 {
			return nil, nil, service.NewValidationError("criteria", service.ErrInvalidValue, "at least one criteria value is required")
		}

		exprs, err := r.table.Criteria(ctx, normaliseEmails(criteria))
		if err != nil {
			return nil, nil, err
		}
		return r.first(ctx, []clause.Expression{clause.Where{Exprs: exprs}})
	})
}

// first loads a single row ordered by primary key, nil when nothing matches
func (r *repository[T]) first(ctx context.Context, conds []clause.Expression) (*T, *int64, error) {
	row := new(T)
	err := r.client.DB.WithContext(ctx).Clauses(conds...).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, storeError("read from", r.table.Name, err)
	}
	return row, nil, nil
}

// filters resolves every filter before anything is sent to the store
func (r *repository[T]) filters(ctx context.Context, filters []request.QueryFilter) ([]clause.Expression, error) {
	dialect := r.client.DB.Dialector.Name()

	exprs := make([]clause.Expression, 0, len(filters))
	for _, filter := range filters {
		field, err := r.table.Resolve(filter.Column)
		if err != nil {
			return nil, err
		}

		operator := request.Operator(strings.ToLower(string(filter.Operator)))
		if !operator.Valid() {
			return nil, service.NewValidationError(filter.Column, service.ErrUnknownOperator, "unsupported operator %q", filter.Operator)
		}

		value := filter.Value
		if comparisons[operator] {
			if value, err = r.table.Normalize(ctx, filter.Column, field, value); err != nil {
				return nil, err
			}
		}

		expr, err := db.QueryCondition{Field: field.DBName, Operator: operator, Value: value}.Expression(dialect)
		if err != nil {
			return nil, err
		}
		if expr != nil {
			exprs = append(exprs, expr)
		}
	}
	return exprs, nil
}

// comparisons take a single value of the column's type
var comparisons = map[request.Operator]bool{
	request.OperatorEq: true, request.OperatorNe: true,
	request.OperatorGt: true, request.OperatorGte: true,
	request.OperatorLt: true, request.OperatorLte: true,
}

// normaliseEmails lowercases and trims email criteria. A value that is not an
// address is left alone and simply matches nothing.
func normaliseEmails(criteria request.Values) request.Values {
	clean := make(request.Values, len(criteria))
	for key, value := range criteria {
		clean[key] = value
		s, ok := value.(string)
		if !ok || !strings.Contains(strings.ToLower(key), "email") {
			continue
		}
		if email, err := utils.SanitizeEmail(s); err == nil {
			clean[key] = email
		}
	}
	return clean
}

// sanitizeValues cleans every string value. Keys containing "email" are normalised
// as addresses; an empty email is kept empty.
func sanitizeValues(values request.Values) (request.Values, error) {
	clean := make(request.Values, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			s, err := sanitizeField(key, v)
			if err != nil {
				return nil, err
			}
			clean[key] = s
		case *string:
			if v == nil {
				clean[key] = v
				continue
			}
			s, err := sanitizeField(key, *v)
			if err != nil {
				return nil, err
			}
			clean[key] = &s
		default:
			clean[key] = value
		}
	}
	return clean, nil
}

func sanitizeField(key, value string) (string, error) {
	if !strings.Contains(strings.ToLower(key), "email") {
		return utils.SanitizeString(value), nil
	}
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	email, err := utils.SanitizeEmail(value)
	if err != nil {
		return "", service.NewValidationError(key, service.ErrInvalidValue, "%v", err)
	}
	return email, nil
}
