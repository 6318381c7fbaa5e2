package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/PayRam/go-dbclient/models"
	"github.com/PayRam/go-dbclient/request"
	"github.com/PayRam/go-dbclient/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func newTestTable(t *testing.T, model interface{}) *Table {
	t.Helper()
	// parsing a model never touches the connection
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	table, err := NewTable(gdb, model)
	require.NoError(t, err)
	return table
}

func TestTableResolve(t *testing.T) {
	table := newTestTable(t, &models.Task{})
	assert.Equal(t, "tasks", table.Name)

	for _, name := range []string{"project_id", "ProjectID", "projectId", "PROJECTID"} {
		field, err := table.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, "project_id", field.DBName)
	}

	_, err := table.Resolve("owner")
	assert.ErrorIs(t, err, service.ErrUnknownColumn)
	assert.ErrorContains(t, err, "owner")

	assert.Equal(t, []string{
		"assignee_id", "created_at", "description", "due_date", "id", "position",
		"priority", "project_id", "status", "title", "updated_at",
	}, table.Columns())
}

func TestTableChangesDropsProtectedColumns(t *testing.T) {
	table := newTestTable(t, &models.User{})

	changes, err := table.Changes(context.Background(), request.Values{
		"id":         5,
		"ID":         6,
		"createdAt":  "2001-01-01",
		"created_at": "2001-01-01",
		"name":       "Alice",
		"IsActive":   false,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "Alice", "is_active": false}, changes)

	_, err = table.Changes(context.Background(), request.Values{"salary": 1})
	assert.ErrorIs(t, err, service.ErrUnknownColumn)
}

func TestTableAssign(t *testing.T) {
	table := newTestTable(t, &models.Task{})

	task := new(models.Task)
	require.NoError(t, table.Assign(context.Background(), task, request.Values{"title": "Survey", "position": float64(3), "assigneeId": 9}))
	assert.Equal(t, "Survey", task.Title)
	assert.Equal(t, 3, task.Position)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, uint(9), *task.AssigneeID)

	err := table.Assign(context.Background(), new(models.Task), request.Values{"position": []string{"x"}})
	assert.ErrorIs(t, err, service.ErrInvalidValue)
}

func TestTableChangesConvertValues(t *testing.T) {
	table := newTestTable(t, &models.Task{})

	changes, err := table.Changes(context.Background(), request.Values{
		"position":   float64(7),
		"assigneeId": float64(3),
		"dueDate":    "2026-05-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, changes["position"])
	assert.Equal(t, uint(3), changes["assignee_id"])
	due, ok := changes["due_date"].(time.Time)
	require.True(t, ok, "due date is stored as a time, got %T", changes["due_date"])
	assert.True(t, due.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))

	changes, err = table.Changes(context.Background(), request.Values{"dueDate": nil})
	require.NoError(t, err)
	assert.Contains(t, changes, "due_date")
	assert.Nil(t, changes["due_date"], "clearing a column writes NULL")

	_, err = table.Changes(context.Background(), request.Values{"position": []string{"x"}})
	assert.ErrorIs(t, err, service.ErrInvalidValue)
}

func TestTableCriteriaNormalizeValues(t *testing.T) {
	table := newTestTable(t, &models.Task{})

	exprs, err := table.Criteria(context.Background(), request.Values{"position": "4", "assigneeId": nil})
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.Nil(t, exprs[0].(clause.Eq).Value, "nil still matches NULL")
	assert.Equal(t, 4, exprs[1].(clause.Eq).Value)

	_, err = table.Criteria(context.Background(), request.Values{"position": "four"})
	assert.ErrorIs(t, err, service.ErrInvalidValue)
}
