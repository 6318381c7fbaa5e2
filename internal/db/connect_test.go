package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PayRam/go-dbclient/config"
	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

func memoryConfig() config.Database {
	return config.Database{Driver: config.DriverSQLite, Path: ":memory:", PoolMin: 2, PoolMax: 10}
}

func TestInitDBCreatesSchema(t *testing.T) {
	gdb, err := InitDB(memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer Shutdown(gdb)

	for _, table := range []string{"users", "clients", "projects", "tasks", "calendar_events", "migrations"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections, "in-memory database is pinned to one connection")

	// migrating twice is a no-op
	assert.NoError(t, Migrate(gdb, nil))
}

func TestOpenFileDatabase(t *testing.T) {
	cfg := config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "site.db"), PoolMin: 1, PoolMax: 4}

	gdb, err := InitDB(cfg, nil)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 4, sqlDB.Stats().MaxOpenConnections)

	assert.NoError(t, HealthCheck(context.Background(), gdb))
	require.NoError(t, Shutdown(gdb))
	assert.ErrorContains(t, HealthCheck(context.Background(), gdb), "health check failed")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestQueryConditionExpression(t *testing.T) {
	column := clause.Column{Table: clause.CurrentTable, Name: "title"}

	expr, err := QueryCondition{Field: "title", Operator: request.OperatorEq, Value: "a"}.Expression("sqlite")
	require.NoError(t, err)
	assert.Equal(t, clause.Eq{Column: column, Value: "a"}, expr)

	expr, err = QueryCondition{Field: "title", Operator: request.OperatorLike, Value: "<b>pour</b>"}.Expression("sqlite")
	require.NoError(t, err)
	assert.Equal(t, clause.Like{Column: column, Value: "%pour%"}, expr)

	expr, err = QueryCondition{Field: "title", Operator: request.OperatorILike, Value: "Pour"}.Expression("postgres")
	require.NoError(t, err)
	assert.Equal(t, clause.Expr{SQL: "? ILIKE ?", Vars: []interface{}{column, "%Pour%"}}, expr)

	expr, err = QueryCondition{Field: "title", Operator: request.OperatorILike, Value: "Pour"}.Expression("sqlite")
	require.NoError(t, err)
	assert.Equal(t, clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []interface{}{column, "%Pour%"}}, expr)

	expr, err = QueryCondition{Field: "title", Operator: request.OperatorIn, Value: [2]string{"a", "b"}}.Expression("sqlite")
	require.NoError(t, err)
	assert.Equal(t, clause.IN{Column: column, Values: []interface{}{"a", "b"}}, expr)

	expr, err = QueryCondition{Field: "title", Operator: request.OperatorNotIn, Value: []string{}}.Expression("sqlite")
	assert.NoError(t, err)
	assert.Nil(t, expr)

	_, err = QueryCondition{Field: "title", Operator: request.OperatorIn, Value: []byte("ab")}.Expression("sqlite")
	assert.ErrorIs(t, err, service.ErrInvalidValue)

	_, err = QueryCondition{Field: "title", Operator: "between", Value: 1}.Expression("sqlite")
	assert.ErrorIs(t, err, service.ErrUnknownOperator)
}
