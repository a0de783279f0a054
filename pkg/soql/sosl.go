package soql

import (
	"fmt"
	"strings"
)

// Search builds a SOSL statement: FIND {term} [IN scope] [RETURNING ...].
type Search struct {
	term      string
	scope     string
	returning []string
}

// Find starts a search for the given term. The term is escaped; the braces
// are added during rendering.
func Find(term string) *Search {
	return &Search{term: EscapeSearchTerm(term)}
}

// In restricts the search scope, e.g. "NAME FIELDS" or "ALL FIELDS".
func (s *Search) In(scope string) *Search {
	s.scope = scope
	return s
}

// Returning adds an object to the RETURNING clause, optionally with a field
// list.
func (s *Search) Returning(object string, fields ...string) *Search {
	if len(fields) > 0 {
		s.returning = append(s.returning, fmt.Sprintf("%s(%s)", object, strings.Join(fields, ", ")))
	} else {
		s.returning = append(s.returning, object)
	}
	return s
}

// String renders the statement.
func (s *Search) String() string {
	var b strings.Builder
	b.WriteString("FIND {")
	b.WriteString(s.term)
	b.WriteString("}")
	if s.scope != "" {
		b.WriteString(" IN ")
		b.WriteString(s.scope)
	}
	if len(s.returning) > 0 {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(s.returning, ", "))
	}
	return b.String()
}

// soslReserved are the characters SOSL treats as operators inside a term.
const soslReserved = `?&|!{}[]()^~*:\"'+-`

// EscapeSearchTerm backslash-escapes SOSL reserved characters in a raw term.
func EscapeSearchTerm(term string) string {
	var b strings.Builder
	for _, r := range term {
		if strings.ContainsRune(soslReserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
