package postgres

import "strconv"

// argList accumulates bind values and hands out the matching $n placeholders.
type argList struct {
	values []any
}

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}
