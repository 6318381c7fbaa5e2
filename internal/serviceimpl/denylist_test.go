package serviceimpl

import (
	"testing"

	"github.com/PayRam/go-dbclient/service"
	"github.com/stretchr/testify/assert"
)

func TestCheckQuery(t *testing.T) {
	rejected := map[string]string{
		"stacked drop":        "SELECT * FROM users; DROP TABLE users;",
		"stacked delete":      "SELECT 1;delete from users",
		"stacked truncate":    "SELECT 1 ;  TRUNCATE tasks",
		"stacked alter":       "SELECT 1; ALTER TABLE users ADD x int",
		"union select":        "SELECT name FROM users WHERE id = ? UNION SELECT password FROM admins",
		"union all select":    "SELECT name FROM users union all select 1",
		"trailing comment":    "SELECT * FROM users WHERE name = ? --",
		"trailing comment nl": "SELECT * FROM users -- keep\n",
		"block comment":       "SELECT /* hint */ * FROM users",
		"exec":                "EXEC('sp_who')",
		"script tag":          "SELECT '< script>' FROM users",
	}
	for name, query := range rejected {
		t.Run(name, func(t *testing.T) {
			err := CheckQuery(query)
			assert.ErrorIs(t, err, service.ErrSuspiciousQuery)
			assert.True(t, service.IsValidation(err))
		})
	}

	allowed := []string{
		"SELECT * FROM users WHERE role = ?",
		"SELECT id, name FROM tasks WHERE position > ? ORDER BY position",
		"UPDATE tasks SET status = ? WHERE id = ?",
		"SELECT * FROM users WHERE name = 'a-b'",
		"SELECT executed_at FROM jobs",
	}
	for _, query := range allowed {
		assert.NoError(t, CheckQuery(query), query)
	}

	assert.ErrorIs(t, CheckQuery("   "), service.ErrInvalidValue)
}
