package sqlgen

import (
	"strconv"
	"strings"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
)

// isSafeName allow-lists identifier characters: letters, digits, '.',
// '-', '_'.
func isSafeName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// bracket renders a validated identifier in T-SQL's [name] quoting.
func bracket(name string) (string, error) {
	if !isSafeName(name) {
		return "", perr.New(perr.InvalidIdentifier, "invalid column or table name %q", name)
	}
	return "[" + name + "]", nil
}

// Format renders a SqlQuery to T-SQL text.
func Format(q *SqlQuery) (string, error) {
	var sb strings.Builder

	selects := make([]string, len(q.Select))
	for i, item := range q.Select {
		s, err := formatSelectItem(item)
		if err != nil {
			return "", err
		}
		selects[i] = s
	}
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	src, err := formatSource(q.Source)
	if err != nil {
		return "", err
	}
	sb.WriteString(src)

	if len(q.OrderBy) > 0 {
		orders := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			s, err := formatOrderBy(o)
			if err != nil {
				return "", err
			}
			orders[i] = s
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	if q.Paging != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(formatFloatAsInt(q.Paging.Skip))
		sb.WriteString(" ROWS")
		if !isUnbounded(q.Paging.Take) {
			sb.WriteString(" FETCH NEXT ")
			sb.WriteString(formatFloatAsInt(q.Paging.Take))
			sb.WriteString(" ROWS ONLY")
		}
	}

	return sb.String(), nil
}

func formatSelectItem(item SelectItem) (string, error) {
	if item.Column == "" {
		return item.Literal, nil
	}
	col, err := bracket(item.Column)
	if err != nil {
		return "", err
	}
	if item.Cast {
		return "CAST(" + col + " AS nvarchar(1000))", nil
	}
	return col, nil
}

func formatOrderBy(o OrderByItem) (string, error) {
	col, err := bracket(o.Column)
	if err != nil {
		return "", err
	}
	if o.Cast {
		col = "CAST(" + col + " AS nvarchar(1000))"
	}
	if o.Direction == query.Descending {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}

func formatSource(src Source) (string, error) {
	switch s := src.(type) {
	case TableSource:
		return bracket(s.Name)
	case NestedSource:
		inner, err := Format(s.Query)
		if err != nil {
			return "", err
		}
		return "(" + inner + ") t", nil
	}
	return "", perr.New(perr.InvalidIdentifier, "unknown SQL source")
}

func isUnbounded(take float64) bool {
	return take != take || take > 1e18 // NaN guard plus +Inf sentinel
}

func formatFloatAsInt(f float64) string {
	if f < 0 {
		f = 0
	}
	return strconv.Itoa(int(f))
}
