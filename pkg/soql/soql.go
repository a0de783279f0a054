// Package soql assembles SOQL query strings and SOSL search strings. The
// builders are plain string concatenation with a fixed clause order; they do
// not validate field or object names against metadata.
package soql

import (
	"fmt"
	"strings"
)

// Query builds a SOQL statement. Clauses render in the order SELECT, FROM,
// WHERE, GROUP BY, ORDER BY, LIMIT, OFFSET regardless of call order.
type Query struct {
	fields  []string
	object  string
	where   string
	groupBy []string
	orderBy string
	limit   int
	offset  int
}

// Select starts a query over the given fields.
func Select(fields ...string) *Query {
	return &Query{fields: fields}
}

func (q *Query) From(object string) *Query {
	q.object = object
	return q
}

// Where sets the filter clause verbatim. Use QuoteString for any string
// literal interpolated into the clause.
func (q *Query) Where(clause string) *Query {
	q.where = clause
	return q
}

func (q *Query) GroupBy(fields ...string) *Query {
	q.groupBy = fields
	return q
}

// OrderBy sets the ordering clause, e.g. "LastModifiedDate DESC".
func (q *Query) OrderBy(clause string) *Query {
	q.orderBy = clause
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

// String renders the statement.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.object)
	if q.where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.where)
	}
	if len(q.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.groupBy, ", "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", q.offset)
	}
	return b.String()
}

// QuoteString renders s as a SOQL string literal, escaping backslashes and
// single quotes.
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
