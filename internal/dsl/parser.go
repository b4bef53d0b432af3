package dsl

import (
	"strconv"
	"strings"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
)

// condSeparators lists the relational operator separators in the order
// a left-to-right scan should try them. Longer/more specific tokens
// are not a concern here since each is padded with surrounding spaces.
var condSeparators = []struct {
	sep string
	op  query.RelOp
}{
	{" eq ", query.Equals},
	{" neq ", query.NotEquals},
	{" lte ", query.LessThan},
	{" gte ", query.GreaterThan},
	{" in ", query.InRange},
	{" like ", query.Like},
}

// Parse turns a URL-decoded '$'-joined transformation string into a
// Query, recognizing the trailing metadata/series/range action chunk.
func Parse(raw string) (query.Query, error) {
	chunks := splitChunks(raw)

	action := query.Action{Kind: query.GetTheData}
	transformChunks := chunks
	if len(chunks) > 0 {
		last := parseChunk(chunks[len(chunks)-1])
		if a, ok, err := tryParseAction(last); err != nil {
			return query.Query{}, err
		} else if ok {
			action = a
			transformChunks = chunks[:len(chunks)-1]
		}
	}

	transforms := make([]query.Transformation, 0, len(transformChunks))
	for _, c := range transformChunks {
		t, err := parseChunkToTransform(parseChunk(c))
		if err != nil {
			return query.Query{}, err
		}
		transforms = append(transforms, t)
	}

	return query.Query{Transformations: transforms, Action: action}, nil
}

// tryParseAction recognizes metadata/series(k,v)/range(f) as the tail
// action; any other op leaves the query's action as GetTheData.
func tryParseAction(c chunk) (query.Action, bool, error) {
	switch c.op {
	case "metadata":
		return query.Action{Kind: query.MetadataAction}, true, nil
	case "series":
		if len(c.args) != 2 {
			return query.Action{}, false, perr.New(perr.ParseError, "series requires exactly 2 arguments, got %d", len(c.args))
		}
		args := trimIdents(c.args)
		return query.Action{Kind: query.GetSeries, KeyField: args[0], ValueField: args[1]}, true, nil
	case "range":
		if len(c.args) != 1 {
			return query.Action{}, false, perr.New(perr.ParseError, "range requires exactly 1 argument, got %d", len(c.args))
		}
		return query.Action{Kind: query.GetRange, Field: trimIdent(c.args[0])}, true, nil
	}
	return query.Action{}, false, nil
}

func parseChunkToTransform(c chunk) (query.Transformation, error) {
	switch c.op {
	case "drop":
		return query.Transformation{Kind: query.TDropColumns, Columns: trimIdents(c.args)}, nil
	case "sort":
		keys, err := parseSortKeys(c.args)
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TSortBy, SortKeys: keys}, nil
	case "filter":
		op, conds, err := parseFilter(c.args)
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TFilterBy, FilterOp: op, Conditions: conds}, nil
	case "groupby":
		keys, aggs, err := parseGroupBy(c.args)
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TGroupBy, GroupKeys: keys, GroupAggs: aggs}, nil
	case "windowby":
		key, size, aggs, err := parseWindowBy(c.args)
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TWindowBy, KeyField: key, WindowSize: size, WindowAggs: aggs}, nil
	case "expandby":
		key, aggs, err := parseExpandBy(c.args)
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TExpandBy, KeyField: key, WindowAggs: aggs}, nil
	case "take":
		n, err := parseIntArg(c.args, "take")
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TPaging, PageOps: []query.PageOp{{Kind: query.Take, N: n}}}, nil
	case "skip":
		n, err := parseIntArg(c.args, "skip")
		if err != nil {
			return query.Transformation{}, err
		}
		return query.Transformation{Kind: query.TPaging, PageOps: []query.PageOp{{Kind: query.Skip, N: n}}}, nil
	case "":
		return query.Transformation{Kind: query.TEmpty}, nil
	}
	return query.Transformation{}, perr.New(perr.ParseError, "unknown transformation %q", c.op)
}

func parseIntArg(args []string, op string) (int, error) {
	if len(args) != 1 {
		return 0, perr.New(perr.ParseError, "%s requires exactly 1 argument, got %d", op, len(args))
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, perr.New(perr.ParseError, "%s argument %q is not an integer", op, args[0])
	}
	return n, nil
}

// parseSortKeys parses "col" or "col asc"/"col desc" tokens; trailing
// whitespace before the suffix is significant Default
// direction is Ascending.
func parseSortKeys(args []string) ([]query.SortKey, error) {
	keys := make([]query.SortKey, 0, len(args))
	for _, a := range args {
		dir := query.Ascending
		col := a
		switch {
		case strings.HasSuffix(a, " asc"):
			col = strings.TrimSuffix(a, " asc")
		case strings.HasSuffix(a, " desc"):
			col = strings.TrimSuffix(a, " desc")
			dir = query.Descending
		}
		keys = append(keys, query.SortKey{Column: trimIdent(col), Direction: dir})
	}
	return keys, nil
}

// parseFilter parses filter(and|or, cond, cond, ...); the first arg may
// select the boolean operator, default And.
func parseFilter(args []string) (query.BoolOp, []query.Condition, error) {
	op := query.And
	rest := args
	if len(args) > 0 {
		switch strings.TrimSpace(args[0]) {
		case "and":
			rest = args[1:]
		case "or":
			op = query.Or
			rest = args[1:]
		}
	}
	conds := make([]query.Condition, 0, len(rest))
	for _, a := range rest {
		c, err := parseCondition(a)
		if err != nil {
			return 0, nil, err
		}
		conds = append(conds, c)
	}
	return op, conds, nil
}

// parseCondition finds the first operator separator from condSeparators
// scanning left-to-right and splits the condition string there.
func parseCondition(s string) (query.Condition, error) {
	bestIdx := -1
	var bestOp query.RelOp
	var bestSep string
	for _, cand := range condSeparators {
		idx := strings.Index(s, cand.sep)
		if idx == -1 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestOp = cand.op
			bestSep = cand.sep
		}
	}
	if bestIdx == -1 {
		return query.Condition{}, perr.New(perr.ParseError, "unparseable condition %q", s)
	}
	field := trimIdent(s[:bestIdx])
	val := trimIdent(s[bestIdx+len(bestSep):])
	return query.Condition{Op: bestOp, Field: field, Value: val}, nil
}

// parseKeyedPrefix recognizes a "by <key>" token, returning the trimmed
// key and whether the token matched.
func parseKeyedPrefix(tok string) (string, bool) {
	const prefix = "by"
	if !strings.HasPrefix(tok, prefix) || len(tok) <= len(prefix) {
		return "", false
	}
	return trimIdent(tok[len(prefix)+1:]), true
}

func parseGroupBy(args []string) ([]string, []query.GroupAggregation, error) {
	var keys []string
	i := 0
	for i < len(args) {
		key, ok := parseKeyedPrefix(args[i])
		if !ok {
			break
		}
		keys = append(keys, key)
		i++
	}
	aggs := make([]query.GroupAggregation, 0, len(args)-i)
	for _, tok := range args[i:] {
		a, err := parseGroupAgg(tok)
		if err != nil {
			return nil, nil, err
		}
		aggs = append(aggs, a)
	}
	return keys, aggs, nil
}

func parseWindowBy(args []string) (string, int, []query.WindowAggregation, error) {
	if len(args) < 2 {
		return "", 0, nil, perr.New(perr.ParseError, "windowby requires a key, a size and at least one aggregation")
	}
	key, ok := parseKeyedPrefix(args[0])
	if !ok {
		return "", 0, nil, perr.New(perr.ParseError, "windowby expects \"by <key>\" as its first argument, got %q", args[0])
	}
	size, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return "", 0, nil, perr.New(perr.ParseError, "windowby size %q is not an integer", args[1])
	}
	aggs := make([]query.WindowAggregation, 0, len(args)-2)
	for _, tok := range args[2:] {
		a, err := parseWindowAgg(tok)
		if err != nil {
			return "", 0, nil, err
		}
		aggs = append(aggs, a)
	}
	return key, size, aggs, nil
}

func parseExpandBy(args []string) (string, []query.WindowAggregation, error) {
	if len(args) < 1 {
		return "", nil, perr.New(perr.ParseError, "expandby requires a key and at least one aggregation")
	}
	key, ok := parseKeyedPrefix(args[0])
	if !ok {
		return "", nil, perr.New(perr.ParseError, "expandby expects \"by <key>\" as its first argument, got %q", args[0])
	}
	aggs := make([]query.WindowAggregation, 0, len(args)-1)
	for _, tok := range args[1:] {
		a, err := parseWindowAgg(tok)
		if err != nil {
			return "", nil, err
		}
		aggs = append(aggs, a)
	}
	return key, aggs, nil
}

var groupNullary = map[string]query.GroupAggKind{
	"group-key": query.GroupKey,
	"count-all": query.CountAll,
}

var groupUnary = map[string]query.GroupAggKind{
	"count-distinct": query.CountDistinct,
	"concat-values":  query.ConcatValues,
	"sum":            query.GroupSum,
	"mean":           query.GroupMean,
}

func parseGroupAgg(tok string) (query.GroupAggregation, error) {
	if kind, ok := groupNullary[tok]; ok {
		return query.GroupAggregation{Kind: kind}, nil
	}
	for prefix, kind := range groupUnary {
		if strings.HasPrefix(tok, prefix) && len(tok) > len(prefix) {
			return query.GroupAggregation{Kind: kind, Field: trimIdent(tok[len(prefix)+1:])}, nil
		}
	}
	return query.GroupAggregation{}, perr.New(perr.ParseError, "unknown group aggregation %q", tok)
}

var windowNullary = map[string]query.WindowAggKind{
	"first-key":  query.FirstKey,
	"last-key":   query.LastKey,
	"middle-key": query.MiddleKey,
}

var windowUnary = map[string]query.WindowAggKind{
	"min":  query.WinMin,
	"max":  query.WinMax,
	"sum":  query.WinSum,
	"mean": query.WinMean,
}

func parseWindowAgg(tok string) (query.WindowAggregation, error) {
	if kind, ok := windowNullary[tok]; ok {
		return query.WindowAggregation{Kind: kind}, nil
	}
	for prefix, kind := range windowUnary {
		if strings.HasPrefix(tok, prefix) && len(tok) > len(prefix) {
			return query.WindowAggregation{Kind: kind, Field: trimIdent(tok[len(prefix)+1:])}, nil
		}
	}
	return query.WindowAggregation{}, perr.New(perr.ParseError, "unknown window aggregation %q", tok)
}
