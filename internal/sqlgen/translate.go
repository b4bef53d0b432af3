package sqlgen

import (
	"math"

	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/util"
)

// Translate folds the SortBy/Paging transformations of transforms,
// left-to-right, into a SqlQuery rooted at tableName. All other
// transformation kinds are silently skipped.
func Translate(tableName string, meta query.Metadata, transforms []query.Transformation) *SqlQuery {
	q := &SqlQuery{
		Source: TableSource{Name: tableName},
		Select: allColumns(meta),
	}
	for _, t := range transforms {
		switch t.Kind {
		case query.TSortBy:
			q = applySortBy(q, meta, t.SortKeys)
		case query.TPaging:
			q = applyPaging(q, t.PageOps)
		}
	}
	return q
}

func allColumns(meta query.Metadata) []SelectItem {
	return util.TransformSlice(meta, func(c query.ColumnMeta) SelectItem {
		return SelectItem{Column: c.Name}
	})
}

// applySortBy implements rule 2: if paging is already set, wrap the
// current query in a Nested subquery first so the new ordering applies
// after paging (the nesting rule). Each column is cast to nvarchar when
// its inferred type is String or Any.
func applySortBy(q *SqlQuery, meta query.Metadata, keys []query.SortKey) *SqlQuery {
	if len(keys) == 0 {
		return q
	}
	if q.Paging != nil {
		q = &SqlQuery{
			Source: NestedSource{Query: q},
			Select: sameColumns(q.Select),
		}
	}
	order := make([]OrderByItem, len(keys))
	for i, k := range keys {
		cast := needsCast(meta, k.Column)
		order[i] = OrderByItem{Column: k.Column, Direction: k.Direction, Cast: cast}
	}
	q.OrderBy = order
	return q
}

func needsCast(meta query.Metadata, col string) bool {
	t, ok := meta.Type(col)
	if !ok {
		return false
	}
	return t.Kind == types.StringK || t.Kind == types.Any
}

// sameColumns projects the outer query's select list onto the already
// materialized columns of a nested subquery: plain references, no cast
// (the inner query already rendered the value).
func sameColumns(inner []SelectItem) []SelectItem {
	items := make([]SelectItem, 0, len(inner))
	for _, it := range inner {
		name := it.Column
		if name == "" {
			continue // drop literal synthetic columns like temp_sort
		}
		items = append(items, SelectItem{Column: name})
	}
	return items
}

// applyPaging implements rule 3: if no ORDER BY is set yet, SQL Server
// requires one before OFFSET, so a synthetic "0 as [temp_sort]" column
// and order are introduced. (skip, take) folds left-to-right from the
// query's current paging state.
func applyPaging(q *SqlQuery, ops []query.PageOp) *SqlQuery {
	if q.OrderBy == nil {
		q.Select = append(q.Select, SelectItem{Literal: "0 as [temp_sort]"})
		q.OrderBy = []OrderByItem{{Column: "temp_sort", Direction: query.Ascending}}
	}
	skip, take := 0.0, math.Inf(1)
	if q.Paging != nil {
		skip, take = q.Paging.Skip, q.Paging.Take
	}
	for _, op := range ops {
		switch op.Kind {
		case query.Skip:
			skip += float64(op.N)
			take -= float64(op.N)
		case query.Take:
			take = math.Min(take, float64(op.N))
		}
	}
	q.Paging = &Paging{Skip: skip, Take: take}
	return q
}
