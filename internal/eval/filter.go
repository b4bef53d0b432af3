package eval

import (
	"strconv"
	"strings"
	"time"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

// filterBy keeps rows satisfying the condition set: And conjoins, Or
// disjoins.
func filterBy(rows []query.Row, op query.BoolOp, conds []query.Condition) ([]query.Row, error) {
	out := make([]query.Row, 0, len(rows))
	for _, r := range rows {
		keep, err := satisfies(r, op, conds)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, nil
}

func satisfies(r query.Row, op query.BoolOp, conds []query.Condition) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	if op == query.Or {
		for _, c := range conds {
			ok, err := evalCondition(r, c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	for _, c := range conds {
		ok, err := evalCondition(r, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evalCondition is type-directed on the cell's current Value: the
// relational operators legal for a Value depend on its Kind.
func evalCondition(r query.Row, c query.Condition) (bool, error) {
	cell, ok := r.Get(c.Field)
	if !ok {
		return false, perr.New(perr.ParseError, "filter column %q not present in row", c.Field)
	}
	switch cell.Kind() {
	case value.KindString:
		return evalStringCondition(cell, c)
	case value.KindDate:
		return evalDateCondition(cell, c)
	case value.KindBool:
		return evalBoolCondition(cell, c)
	case value.KindNumber:
		return evalNumberCondition(cell, c)
	}
	return false, perr.New(perr.TypeError, "unsupported value kind in filter")
}

func evalStringCondition(cell value.Value, c query.Condition) (bool, error) {
	switch c.Op {
	case query.Like:
		return strings.Contains(strings.ToLower(cell.StringVal()), strings.ToLower(c.Value)), nil
	case query.Equals:
		return cell.StringVal() == c.Value, nil
	case query.NotEquals:
		return cell.StringVal() != c.Value, nil
	}
	return false, perr.New(perr.TypeError, "operator illegal for string cell")
}

func evalDateCondition(cell value.Value, c query.Condition) (bool, error) {
	if c.Op == query.Like {
		return false, perr.New(perr.TypeError, "like is illegal for date cell")
	}
	if c.Op == query.InRange {
		lo, hi, err := parseDateRange(c.Value)
		if err != nil {
			return false, err
		}
		t := cell.DateVal()
		return !t.Before(lo) && !t.After(hi), nil
	}
	lit, err := parseLiteralDate(c.Value)
	if err != nil {
		return false, err
	}
	t := cell.DateVal()
	switch c.Op {
	case query.Equals:
		return t.Equal(lit), nil
	case query.NotEquals:
		return !t.Equal(lit), nil
	case query.LessThan:
		return t.Before(lit), nil
	case query.GreaterThan:
		return t.After(lit), nil
	}
	return false, perr.New(perr.TypeError, "unsupported operator for date cell")
}

func parseLiteralDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02", "1/2/2006", "1/2/2006 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, perr.New(perr.TypeError, "cannot parse %q as a date", s)
}

func parseDateRange(s string) (time.Time, time.Time, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, perr.New(perr.ParseError, "date range %q must be \"lo,hi\"", s)
	}
	lo, err := parseLiteralDate(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	hi, err := parseLiteralDate(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return lo, hi, nil
}

func evalBoolCondition(cell value.Value, c query.Condition) (bool, error) {
	lit := strings.EqualFold(c.Value, "true")
	switch c.Op {
	case query.Equals:
		return cell.BoolVal() == lit, nil
	case query.NotEquals:
		return cell.BoolVal() != lit, nil
	}
	return false, perr.New(perr.TypeError, "relational operators are illegal for bool cell")
}

func evalNumberCondition(cell value.Value, c query.Condition) (bool, error) {
	switch c.Op {
	case query.GreaterThan, query.LessThan:
		lit, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false, perr.New(perr.TypeError, "cannot parse %q as a number", c.Value)
		}
		if c.Op == query.GreaterThan {
			return cell.NumberVal() > lit, nil
		}
		return cell.NumberVal() < lit, nil
	case query.InRange:
		parts := strings.SplitN(c.Value, ",", 2)
		if len(parts) != 2 {
			return false, perr.New(perr.ParseError, "numeric range %q must be \"lo,hi\"", c.Value)
		}
		lo, errLo := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, errHi := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLo != nil || errHi != nil {
			return false, perr.New(perr.TypeError, "cannot parse %q as a numeric range", c.Value)
		}
		return cell.NumberVal() >= lo && cell.NumberVal() <= hi, nil
	}
	return false, perr.New(perr.TypeError, "equals/not-equals are illegal for number cell")
}
