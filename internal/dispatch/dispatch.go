// Package dispatch handles an incoming Request's query string and
// flags: it parses the DSL, then runs either the in-memory evaluator
// or the SQL translator depending on which Table is addressed.
package dispatch

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/pivotql/pivotql/internal/csvsource"
	"github.com/pivotql/pivotql/internal/dsl"
	"github.com/pivotql/pivotql/internal/eval"
	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/sqlgen"
	"github.com/pivotql/pivotql/internal/sqlsource"
)

// Request mirrors an external request: a query string (still
// URL-encoded) plus a parallel list of flag strings.
type Request struct {
	QueryString string
	Flags       []string
}

// isPreview reports whether "preview" is present among the flags.
func (r Request) isPreview() bool {
	return r.hasFlag("preview")
}

// correctedMean reports whether "corrected-mean" was requested, gating
// ExpandBy's running mean.
func (r Request) correctedMean() bool {
	return r.hasFlag("corrected-mean")
}

func (r Request) hasFlag(name string) bool {
	for _, f := range r.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// RunInMemory folds transformations through the evaluator over table,
// applies preview truncation, and projects the terminal action.
func RunInMemory(table *csvsource.Table, req Request) (eval.Result, error) {
	q, err := parseRequest(req)
	if err != nil {
		return eval.Result{}, err
	}

	rows, meta, err := eval.Run(table.Rows, table.Meta, q.Transformations, req.correctedMean())
	if err != nil {
		return eval.Result{}, err
	}

	if q.Action.Kind != query.MetadataAction && q.Action.Kind != query.GetRange {
		rows = eval.Preview(rows, req.isPreview())
	}

	return eval.ApplyAction(rows, meta, q.Action)
}

// RunSQL translates the SortBy/Paging subset of the query into SQL and
// reads results back. Metadata is answered in-memory without a SQL
// round trip; GetSeries/GetRange are not currently answered on the SQL
// path and return a ParseError naming the limitation rather than
// guessing.
func RunSQL(ctx context.Context, db *sql.DB, tableName string, meta query.Metadata, req Request) (eval.Result, error) {
	q, err := parseRequest(req)
	if err != nil {
		return eval.Result{}, err
	}

	if q.Action.Kind == query.MetadataAction {
		return eval.Result{Kind: query.MetadataAction, MetaCols: meta}, nil
	}
	if q.Action.Kind != query.GetTheData {
		return eval.Result{}, perr.New(perr.ParseError, "the SQL path only answers metadata and get-the-data actions")
	}

	transforms := q.Transformations
	if req.isPreview() {
		transforms = append(append([]query.Transformation{}, transforms...),
			query.Transformation{Kind: query.TPaging, PageOps: []query.PageOp{{Kind: query.Take, N: 10}}})
	}

	sqlAST := sqlgen.Translate(tableName, meta, transforms)
	sqlText, err := sqlgen.Format(sqlAST)
	if err != nil {
		return eval.Result{}, err
	}

	rows, err := sqlsource.ExecuteReader(ctx, db, sqlText, meta)
	if err != nil {
		return eval.Result{}, err
	}
	return eval.Result{Kind: query.GetTheData, Records: rows}, nil
}

// Debug exposes the parsed Query AST for a request without executing
// it, for the CLI's --debug flag.
func Debug(req Request) (query.Query, error) {
	return parseRequest(req)
}

// parseRequest URL-decodes the query string and parses it through the
// DSL steps 1-2.
func parseRequest(req Request) (query.Query, error) {
	decoded, err := url.QueryUnescape(req.QueryString)
	if err != nil {
		return query.Query{}, perr.New(perr.ParseError, "malformed URL-encoded query string: %v", err)
	}
	decoded = strings.TrimSpace(decoded)
	return dsl.Parse(decoded)
}
