package db

import (
	"reflect"

	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/service"
	"github.com/PayRam/go-dbclient/utils"
	"gorm.io/gorm/clause"
)

type QueryCondition struct {
	Field    string           // Resolved database column name
	Operator request.Operator // eq, ne, gt, gte, lt, lte, like, ilike, in, notin
	Value    interface{}      // Value to compare against
}

// Expression translates the condition into a parameterized clause. dialect is the
// gorm dialector name and only matters for ilike. A nil expression with a nil error
// means the condition holds for every row (notin over an empty set).
func (c QueryCondition) Expression(dialect string) (clause.Expression, error) {
	column := clause.Column{Table: clause.CurrentTable, Name: c.Field}

	switch c.Operator {
	case request.OperatorEq:
		return clause.Eq{Column: column, Value: c.Value}, nil
	case request.OperatorNe:
		return clause.Neq{Column: column, Value: c.Value}, nil
	case request.OperatorGt:
		return clause.Gt{Column: column, Value: c.Value}, nil
	case request.OperatorGte:
		return clause.Gte{Column: column, Value: c.Value}, nil
	case request.OperatorLt:
		return clause.Lt{Column: column, Value: c.Value}, nil
	case request.OperatorLte:
		return clause.Lte{Column: column, Value: c.Value}, nil
	case request.OperatorLike, request.OperatorILike:
		pattern, err := c.pattern()
		if err != nil {
			return nil, err
		}
		if c.Operator == request.OperatorLike {
			return clause.Like{Column: column, Value: pattern}, nil
		}
		if dialect == "postgres" {
			return clause.Expr{SQL: "? ILIKE ?", Vars: []interface{}{column, pattern}}, nil
		}
		return clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []interface{}{column, pattern}}, nil
	case request.OperatorIn, request.OperatorNotIn:
		values, err := c.set()
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			if c.Operator == request.OperatorIn {
				return clause.Expr{SQL: "1 = 0"}, nil
			}
			return nil, nil
		}
		in := clause.IN{Column: column, Values: values}
		if c.Operator == request.OperatorNotIn {
			return clause.Not(in), nil
		}
		return in, nil
	default:
		return nil, service.NewValidationError(c.Field, service.ErrUnknownOperator,
			"operator %q is not one of eq, ne, gt, gte, lt, lte, like, ilike, in, notin", c.Operator)
	}
}

// pattern sanitizes a like/ilike value and wraps it in wildcards
func (c QueryCondition) pattern() (string, error) {
	s, ok := c.Value.(string)
	if !ok {
		if p, isPtr := c.Value.(*string); isPtr && p != nil {
			s, ok = *p, true
		}
	}
	if !ok {
		return "", service.NewValidationError(c.Field, service.ErrInvalidValue,
			"operator %s expects a string, got %T", c.Operator, c.Value)
	}
	return "%" + utils.SanitizeString(s) + "%", nil
}

// set flattens a slice or array value for in/notin
func (c QueryCondition) set() ([]interface{}, error) {
	rv := reflect.ValueOf(c.Value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, service.NewValidationError(c.Field, service.ErrInvalidValue,
			"operator %s expects a collection, got %T", c.Operator, c.Value)
	}

	values := make([]interface{}, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, nil
}
