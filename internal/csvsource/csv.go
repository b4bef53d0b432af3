// Package csvsource reads a CSV file's header and rows, infers column
// Metadata by sampling cells, and materializes every row's cells into
// typed Values consistent with the resolved column type.
package csvsource

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

// Table is a named, materialized (Metadata, []Row) pair.
type Table struct {
	Name string
	Meta query.Metadata
	Rows []query.Row
}

// Load reads header + rows from r, infers Metadata by sampling up to
// types.MaxSampleRows rows, then parses every row's cells per the
// resolved column type.
func Load(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, perr.New(perr.DataError, "csv source %q is empty", name)
		}
		return nil, perr.New(perr.DataError, "csv source %q: %v", name, err)
	}

	var raw [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perr.New(perr.DataError, "csv source %q: %v", name, err)
		}
		raw = append(raw, rec)
	}
	if len(raw) == 0 {
		return nil, perr.New(perr.DataError, "csv source %q has a header but no data rows", name)
	}

	meta := inferMetadata(header, raw)
	rows, err := buildRows(header, raw, meta)
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, Meta: meta, Rows: rows}, nil
}

func inferMetadata(header []string, raw [][]string) query.Metadata {
	sampleN := len(raw)
	if sampleN > types.MaxSampleRows {
		sampleN = types.MaxSampleRows
	}
	meta := make(query.Metadata, len(header))
	for col, name := range header {
		var kinds []types.InferredType
		for _, rec := range raw[:sampleN] {
			if col < len(rec) {
				kinds = append(kinds, types.Infer(rec[col]))
			}
		}
		meta[col] = query.ColumnMeta{Name: name, Type: types.UnifyAll(kinds)}
	}
	return meta
}

func buildRows(header []string, raw [][]string, meta query.Metadata) ([]query.Row, error) {
	rows := make([]query.Row, len(raw))
	for i, rec := range raw {
		row := make(query.Row, 0, len(header))
		for col, name := range header {
			var cell string
			if col < len(rec) {
				cell = rec[col]
			}
			v, err := parseCell(cell, meta[col].Type)
			if err != nil {
				return nil, perr.New(perr.DataError, "row %d, column %q: %v", i, name, err)
			}
			row = append(row, query.Cell{Name: name, Value: v})
		}
		rows[i] = row
	}
	return rows, nil
}

// parseCell parses one textual cell consistent with the column's
// resolved type, so a String-typed column keeps its raw text even when
// a later row's cell happens to look numeric.
func parseCell(s string, t types.InferredType) (value.Value, error) {
	switch t.Kind {
	case types.OneZero:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return value.Value{}, perr.New(perr.DataError, "expected 0/1, got %q", s)
		}
		return value.Bool(n != 0), nil
	case types.Int, types.Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, perr.New(perr.DataError, "expected a number, got %q", s)
		}
		return value.Number(f), nil
	case types.Bool:
		switch strings.ToLower(s) {
		case "true", "1":
			return value.Bool(true), nil
		case "false", "0":
			return value.Bool(false), nil
		}
		return value.Value{}, perr.New(perr.DataError, "expected true/false/0/1, got %q", s)
	case types.DateK:
		d, ok := types.ParseDate(s, t.Culture)
		if !ok {
			return value.Value{}, perr.New(perr.DataError, "expected a date, got %q", s)
		}
		return value.Date(d), nil
	default:
		return value.String(s), nil
	}
}
