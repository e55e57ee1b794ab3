package db

import (
	"fmt"
	"strings"
)

// setBuilder accumulates SET assignments for a partial UPDATE. Callers
// add one assignment per non-nil update field and finish with arg() for
// the WHERE parameter, so placeholder numbering stays consistent.
type setBuilder struct {
	assignments []string
	args        []any
}

// set appends "column = $n" with the next placeholder number.
func (b *setBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.assignments = append(b.assignments, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// arg appends a bare argument and returns its placeholder number.
func (b *setBuilder) arg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

func (b *setBuilder) empty() bool {
	return len(b.assignments) == 0
}

func (b *setBuilder) clause() string {
	return strings.Join(b.assignments, ", ")
}
