package serviceimpl

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/service"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// protectedKeys can never be changed through Update, whatever the table looks like
var protectedKeys = map[string]bool{
	"id": true, "ID": true, "createdAt": true, "created_at": true, "CreatedAt": true,
}

// Table describes a model's columns. A column can be addressed by its database name
// (created_at), its Go field name (CreatedAt) or its json name (createdAt).
type Table struct {
	Name    string
	model   reflect.Type
	columns map[string]*schema.Field
	names   []string
	primary *schema.Field
	created *schema.Field
	updated *schema.Field
}

func NewTable(db *gorm.DB, model interface{}) (*Table, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
	}
	s := stmt.Schema

	t := &Table{
		Name:    s.Table,
		model:   s.ModelType,
		columns: make(map[string]*schema.Field),
		primary: s.PrioritizedPrimaryField,
	}
	if t.primary == nil {
		return nil, fmt.Errorf("model %T has no primary key", model)
	}

	for _, field := range s.Fields {
		if field.DBName == "" {
			continue
		}
		t.names = append(t.names, field.DBName)
		for _, name := range []string{field.DBName, field.Name, jsonName(field)} {
			if name != "" && name != "-" {
				t.columns[name] = field
				t.columns[strings.ToLower(name)] = field
			}
		}
		if t.created == nil && (field.AutoCreateTime > 0 || field.DBName == "created_at") {
			t.created = field
		}
		if t.updated == nil && (field.AutoUpdateTime > 0 || field.DBName == "updated_at") {
			t.updated = field
		}
	}
	sort.Strings(t.names)

	return t, nil
}

// Resolve maps a caller supplied name to its column
func (t *Table) Resolve(name string) (*schema.Field, error) {
	if field, ok := t.columns[name]; ok {
		return field, nil
	}
	if field, ok := t.columns[strings.ToLower(name)]; ok {
		return field, nil
	}
	return nil, service.NewValidationError(name, service.ErrUnknownColumn, "column does not exist on table %s", t.Name)
}

// Columns returns the database names of every column, sorted
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Info() service.TableInfo {
	return service.TableInfo{Name: t.Name, Columns: t.Columns()}
}

// ByID is the predicate selecting a row by primary key
func (t *Table) ByID(id interface{}) clause.Where {
	return clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: t.primary.DBName}, Value: id},
	}}
}

// Assign copies values onto a new row
func (t *Table) Assign(ctx context.Context, row interface{}, values request.Values) error {
	rv := reflect.ValueOf(row).Elem()
	for _, key := range sortedKeys(values) {
		field, err := t.Resolve(key)
		if err != nil {
			return err
		}
		if err := field.Set(ctx, rv, values[key]); err != nil {
			return service.NewValidationError(key, service.ErrInvalidValue, "cannot store %T in column %s: %v", values[key], field.DBName, err)
		}
	}
	return nil
}

// Changes converts an update record into column assignments. The primary key and
// the creation timestamp are silently dropped. Values are converted to the column's
// type so an updated row is stored exactly like an inserted one.
func (t *Table) Changes(ctx context.Context, values request.Values) (map[string]interface{}, error) {
	row := reflect.New(t.model).Elem()
	changes := make(map[string]interface{}, len(values))
	for _, key := range sortedKeys(values) {
		if protectedKeys[key] {
			continue
		}
		field, err := t.Resolve(key)
		if err != nil {
			return nil, err
		}
		if field == t.primary || field == t.created {
			continue
		}
		value, err := t.convert(ctx, row, key, field, values[key])
		if err != nil {
			return nil, err
		}
		changes[field.DBName] = value
	}
	return changes, nil
}

// Normalize converts a value compared against a column the same way Changes does.
// nil is kept as is so it still matches NULL.
func (t *Table) Normalize(ctx context.Context, key string, field *schema.Field, value interface{}) (interface{}, error) {
	if isNil(value) {
		return value, nil
	}
	return t.convert(ctx, reflect.New(t.model).Elem(), key, field, value)
}

func (t *Table) convert(ctx context.Context, row reflect.Value, key string, field *schema.Field, value interface{}) (interface{}, error) {
	if err := field.Set(ctx, row, value); err != nil {
		return nil, service.NewValidationError(key, service.ErrInvalidValue, "cannot store %T in column %s: %v", value, field.DBName, err)
	}
	converted, _ := field.ValueOf(ctx, row)
	rv := reflect.ValueOf(converted)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		return rv.Elem().Interface(), nil
	}
	return converted, nil
}

// Criteria turns column -> value pairs into equality predicates
func (t *Table) Criteria(ctx context.Context, criteria request.Values) ([]clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(criteria))
	for _, key := range sortedKeys(criteria) {
		field, err := t.Resolve(key)
		if err != nil {
			return nil, err
		}
		value, err := t.Normalize(ctx, key, field, criteria[key])
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: value})
	}
	return exprs, nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func jsonName(field *schema.Field) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func sortedKeys(values request.Values) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
