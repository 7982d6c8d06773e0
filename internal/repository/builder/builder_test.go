package builder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("id", "username").From("users").Where("username = ?", "alice").Build()
		assert.Equal(t, "SELECT id, username FROM users WHERE username = $1", query)
		assert.Equal(t, []interface{}{"alice"}, args)
	})

	t.Run("Insert with returning", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Insert("employees", "first_name", "salary").
			Values("Ada", 90000).
			Returning("id").
			Build()
		assert.Equal(t, "INSERT INTO employees (first_name, salary) VALUES ($1, $2) RETURNING id", query)
		assert.Equal(t, []interface{}{"Ada", 90000}, args)
	})

	t.Run("Update", func(t *testing.T) {
		query, args := NewSQLBuilder().Update("employees").Set("salary", 100).Set("position", "Lead").Where("id = ?", 7).Build()
		assert.Equal(t, "UPDATE employees SET salary = $1, position = $2 WHERE id = $3", query)
		assert.Equal(t, []interface{}{100, "Lead", 7}, args)
	})

	t.Run("Delete", func(t *testing.T) {
		query, args := NewSQLBuilder().Delete("employees").Where("id = ?", 3).Build()
		assert.Equal(t, "DELETE FROM employees WHERE id = $1", query)
		assert.Equal(t, []interface{}{3}, args)
	})

	t.Run("Group by with order", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Select("department", "COUNT(*)").
			From("employees").
			GroupBy("department").
			OrderBy("department").
			Build()
		assert.Equal(t, "SELECT department, COUNT(*) FROM employees GROUP BY department ORDER BY department", query)
		assert.Empty(t, args)
	})

	t.Run("Limit and offset", func(t *testing.T) {
		query, _ := NewSQLBuilder().Select("id").From("employees").OrderBy("id").Limit(50).Offset(100).Build()
		assert.Equal(t, "SELECT id FROM employees ORDER BY id LIMIT 50 OFFSET 100", query)
	})
}

func TestSQLBuilderConditions(t *testing.T) {
	t.Run("Or", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("id").
			From("employees").
			Or("department = ?", "HR Department").
			Or("department = ?", "Sales Department").
			Build()
		assert.Equal(t, "SELECT id FROM employees WHERE department = $1 OR department = $2", query)
		assert.Equal(t, []interface{}{"HR Department", "Sales Department"}, args)
	})

	t.Run("WhereGroup followed by Or", func(t *testing.T) {
		since := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
		query, args := NewSQLBuilder().Select("id").
			From("employees").
			WhereGroup(func(g *SQLBuilder) *SQLBuilder {
				return g.Where("gender = ?", "Female").Where("dob > ?", since)
			}).
			Or("salary > ?", 80000).
			Build()
		assert.Equal(t, "SELECT id FROM employees WHERE (gender = $1 AND dob > $2) OR salary > $3", query)
		assert.Len(t, args, 3)
	})

	t.Run("Where and name group", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("id").
			From("employees").
			Where("department = ?", "IT Department").
			WhereGroup(func(g *SQLBuilder) *SQLBuilder {
				return g.Where("first_name ILIKE ?", "%ada%").Or("last_name ILIKE ?", "%ada%")
			}).
			Build()
		assert.Equal(t, "SELECT id FROM employees WHERE department = $1 AND (first_name ILIKE $2 OR last_name ILIKE $3)", query)
		assert.Equal(t, []interface{}{"IT Department", "%ada%", "%ada%"}, args)
	})

	t.Run("Empty group is skipped", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("id").
			From("employees").
			WhereGroup(func(g *SQLBuilder) *SQLBuilder { return g }).
			Where("id = ?", 1).
			Build()
		assert.Equal(t, "SELECT id FROM employees WHERE id = $1", query)
		assert.Equal(t, []interface{}{1}, args)
	})

	t.Run("Update numbers where after set", func(t *testing.T) {
		query, args := NewSQLBuilder().Update("employees").
			Set("department", "Finance Department").
			Or("id = ?", 1).
			Or("id = ?", 2).
			Build()
		assert.Equal(t, "UPDATE employees SET department = $1 WHERE id = $2 OR id = $3", query)
		assert.Len(t, args, 3)
	})

	t.Run("Delete with condition and no args", func(t *testing.T) {
		query, args := NewSQLBuilder().Delete("employees").
			Where("dob < NOW() - INTERVAL '100 years'").
			Build()
		assert.Equal(t, "DELETE FROM employees WHERE dob < NOW() - INTERVAL '100 years'", query)
		assert.Empty(t, args)
	})
}

func TestBuildIsRepeatable(t *testing.T) {
	b := NewSQLBuilder().Select("id").From("employees").Where("id = ?", 1).Or("id = ?", 2)

	q1, a1 := b.Build()
	q2, a2 := b.Build()
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
	assert.Len(t, a2, 2)
}

func TestBuildSafe(t *testing.T) {
	t.Run("matching", func(t *testing.T) {
		sql, args, err := NewSQLBuilder().Select("*").
			From("employees").
			Where("id = ?", 1001).
			Where("gender = ?", "Male").
			BuildSafe()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM employees WHERE id = $1 AND gender = $2", sql)
		assert.Len(t, args, 2)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := NewSQLBuilder().Select("*").From("employees").Where("id = ? AND salary > ?", 1).BuildSafe()
		assert.Error(t, err)
	})

	t.Run("extra argument", func(t *testing.T) {
		_, _, err := NewSQLBuilder().Select("*").From("employees").Where("id = ?", 1, 2).BuildSafe()
		assert.Error(t, err)
	})
}
