// Package query holds the typed Query AST the DSL parser produces and
// the row/metadata shapes the evaluator and SQL translator share.
package query

import (
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

// Cell is one (column_name, Value) pair.
type Cell struct {
	Name  string
	Value value.Value
}

// Row is an ordered sequence of cells; column order is the emission
// order for records.
type Row []Cell

// Get returns the cell value for name and whether it was present.
func (r Row) Get(name string) (value.Value, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return value.Value{}, false
}

// ColumnMeta is one (column_name, InferredType) pair.
type ColumnMeta struct {
	Name string
	Type types.InferredType
}

// Metadata is the ordered column list: names match every row, order is
// the canonical column order.
type Metadata []ColumnMeta

func (m Metadata) Type(name string) (types.InferredType, bool) {
	for _, c := range m {
		if c.Name == name {
			return c.Type, true
		}
	}
	return types.InferredType{}, false
}

// Direction is a SortBy column's ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// RelOp is a FilterBy condition's relational operator.
type RelOp int

const (
	Equals RelOp = iota
	NotEquals
	LessThan
	GreaterThan
	InRange
	Like
)

// BoolOp combines FilterBy's conditions.
type BoolOp int

const (
	And BoolOp = iota
	Or
)

// SortKey is one column/direction pair of a SortBy.
type SortKey struct {
	Column    string
	Direction Direction
}

// Condition is one parsed FilterBy clause: "field <op> value".
type Condition struct {
	Op    RelOp
	Field string
	Value string
}

// GroupAggKind tags a GroupAggregation variant.
type GroupAggKind int

const (
	GroupKey GroupAggKind = iota
	CountAll
	CountDistinct
	ConcatValues
	GroupSum
	GroupMean
)

// GroupAggregation is one aggregator contributed to a GroupBy's output row.
type GroupAggregation struct {
	Kind  GroupAggKind
	Field string // unused for GroupKey/CountAll
}

// WindowAggKind tags a WindowAggregation variant, shared by WindowBy and
// ExpandBy.
type WindowAggKind int

const (
	WinMin WindowAggKind = iota
	WinMax
	WinSum
	WinMean
	FirstKey
	LastKey
	MiddleKey
)

// WindowAggregation is one aggregator contributed to a WindowBy/ExpandBy
// output row.
type WindowAggregation struct {
	Kind  WindowAggKind
	Field string // unused for FirstKey/LastKey/MiddleKey
}

// PageOpKind tags a Paging operator.
type PageOpKind int

const (
	Take PageOpKind = iota
	Skip
)

// PageOp is one Paging step; ops are applied to the row sequence in
// declared order.
type PageOp struct {
	Kind PageOpKind
	N    int
}

// TransformKind tags a Transformation variant.
type TransformKind int

const (
	TDropColumns TransformKind = iota
	TSortBy
	TGroupBy
	TWindowBy
	TExpandBy
	TFilterBy
	TPaging
	TEmpty
)

// Transformation is one pipeline stage. Only the fields relevant to Kind
// are populated.
type Transformation struct {
	Kind TransformKind

	// DropColumns
	Columns []string

	// SortBy
	SortKeys []SortKey

	// GroupBy / WindowBy / ExpandBy
	GroupKeys  []string // GroupBy
	KeyField   string   // WindowBy / ExpandBy
	WindowSize int      // WindowBy
	GroupAggs  []GroupAggregation
	WindowAggs []WindowAggregation

	// FilterBy
	FilterOp   BoolOp
	Conditions []Condition

	// Paging
	PageOps []PageOp
}

// ActionKind tags which terminal action the query answers with.
type ActionKind int

const (
	MetadataAction ActionKind = iota
	GetTheData
	GetSeries
	GetRange
)

// Action is the query's terminal projection, applied after the
// transformation pipeline.
type Action struct {
	Kind ActionKind

	// GetSeries
	KeyField   string
	ValueField string

	// GetRange
	Field string
}

// Query is a parsed DSL request: a transformation pipeline plus a
// terminal action.
type Query struct {
	Transformations []Transformation
	Action          Action
}
