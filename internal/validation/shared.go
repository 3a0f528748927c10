package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error aggregates per-field validation failures so a bad request reports
// every problem at once instead of the first one hit.
type Error struct {
	Fields map[string]string
}

// Error renders the field messages in field-name order so the same failure
// always produces the same string.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
