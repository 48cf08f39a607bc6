package repository

import "strings"

// filter accumulates WHERE conditions and their positional arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, args ...any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// like adds a case-insensitive substring match over one or more columns.
func (f *filter) like(term string, cols ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	pattern := "%" + term + "%"
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " LIKE ?"
		f.args = append(f.args, pattern)
	}
	f.conds = append(f.conds, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page returns the filter args followed by LIMIT and OFFSET values.
func (f *filter) page(limit, offset int) []any {
	return append(append([]any{}, f.args...), limit, offset)
}
