package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder helps construct SQL queries dynamically. Conditions are written
// with '?' markers which Build rewrites into Postgres-style $n placeholders.
type SQLBuilder struct {
	kind      statementKind
	table     string
	columns   []string
	values    []interface{}
	sets      []setClause
	conds     []condition
	groupBy   []string
	orderBy   []string
	returning []string
	limit     int
	offset    int
}

type statementKind int

const (
	kindNone statementKind = iota
	kindSelect
	kindInsert
	kindUpdate
	kindDelete
)

type setClause struct {
	col string
	val interface{}
}

// condition is one WHERE fragment. group is set for parenthesized groups.
type condition struct {
	connector string
	sql       string
	args      []interface{}
	group     *SQLBuilder
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.kind = kindSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.kind = kindInsert
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.kind = kindUpdate
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.kind = kindDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set adds a column assignment to an UPDATE.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.sets = append(b.sets, setClause{col: col, val: val})
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{connector: "AND", sql: cond, args: args})
	return b
}

// Or adds a condition joined with OR.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.conds = append(b.conds, condition{connector: "OR", sql: cond, args: args})
	return b
}

// WhereGroup adds a parenthesized group of conditions joined with AND.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	g := fn(NewSQLBuilder())
	b.conds = append(b.conds, condition{connector: "AND", group: g})
	return b
}

// GroupBy adds a GROUP BY clause.
func (b *SQLBuilder) GroupBy(cols ...string) *SQLBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Returning adds a RETURNING clause to INSERT, UPDATE or DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = append(b.returning, cols...)
	return b
}

// BuildSafe is Build plus a check that every '?' marker has exactly one
// argument.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	markers := b.markerCount()
	sql, args := b.Build()
	if markers != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", markers, len(args))
	}
	return sql, args, nil
}

// Build constructs the final SQL string and arguments. It does not modify the
// builder and may be called more than once.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	n := 0

	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	switch b.kind {
	case kindSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case kindInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = next()
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		args = append(args, b.values...)
	case kindUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		clauses := make([]string, len(b.sets))
		for i, s := range b.sets {
			clauses[i] = s.col + " = " + next()
			args = append(args, s.val)
		}
		sb.WriteString(strings.Join(clauses, ", "))
	case kindDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if where := renderConditions(b.conds, next, &args); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	return sb.String(), args
}

func renderConditions(conds []condition, next func() string, args *[]interface{}) string {
	var sb strings.Builder
	for i, c := range conds {
		var frag string
		if c.group != nil {
			inner := renderConditions(c.group.conds, next, args)
			if inner == "" {
				continue
			}
			frag = "(" + inner + ")"
		} else {
			frag = bindMarkers(c.sql, next)
			*args = append(*args, c.args...)
		}
		if i > 0 && sb.Len() > 0 {
			sb.WriteString(" " + c.connector + " ")
		}
		sb.WriteString(frag)
	}
	return sb.String()
}

func bindMarkers(sql string, next func() string) string {
	parts := strings.Split(sql, "?")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			sb.WriteString(next())
		}
	}
	return sb.String()
}

func (b *SQLBuilder) markerCount() int {
	count := len(b.values) + len(b.sets)
	var walk func([]condition)
	walk = func(conds []condition) {
		for _, c := range conds {
			if c.group != nil {
				walk(c.group.conds)
				continue
			}
			count += strings.Count(c.sql, "?")
		}
	}
	walk(b.conds)
	return count
}
