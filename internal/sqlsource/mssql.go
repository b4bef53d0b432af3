// Package sqlsource runs a translated statement over database/sql with
// the go-mssqldb driver and materializes each result row into typed
// Values guided by column Metadata.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

// Config describes a SQL Server connection.
type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	DbName   string
}

// BuildDSN renders the sqlserver:// DSN go-mssqldb expects.
func BuildDSN(c Config) string {
	q := url.Values{}
	q.Add("database", c.DbName)
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens a *sql.DB against the given DSN using the "sqlserver" driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("sqlserver", dsn)
}

// ExecuteReader runs sqlText and materializes every returned row into a
// query.Row using colMeta to decide each column's target Value kind.
func ExecuteReader(ctx context.Context, db *sql.DB, sqlText string, colMeta query.Metadata) ([]query.Row, error) {
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []query.Row
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		scanPtrs := make([]interface{}, len(cols))
		for i := range cols {
			scanPtrs[i] = &raw[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return nil, err
		}

		row, err := materializeRow(cols, raw, colMeta)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// materializeRow converts raw driver values per column's resolved type:
// String/Any -> String (null -> empty string); Bool/OneZero -> Bool;
// Date -> Date; Int/Float -> Number. A non-string null fails.
func materializeRow(cols []string, raw []interface{}, colMeta query.Metadata) (query.Row, error) {
	row := make(query.Row, 0, len(cols))
	for i, name := range cols {
		t, ok := colMeta.Type(name)
		if !ok {
			t = types.T(types.StringK)
		}
		v, err := toValue(raw[i], t, name)
		if err != nil {
			return nil, err
		}
		row = append(row, query.Cell{Name: name, Value: v})
	}
	return row, nil
}

func toValue(raw interface{}, t types.InferredType, col string) (value.Value, error) {
	isNull := raw == nil

	switch t.Kind {
	case types.StringK, types.Any:
		if isNull {
			return value.String(""), nil
		}
		return value.String(asString(raw)), nil
	case types.Bool, types.OneZero:
		if isNull {
			return value.Value{}, perr.New(perr.NullError, "unexpected null in bool column %q", col)
		}
		return value.Bool(asBool(raw)), nil
	case types.DateK:
		if isNull {
			return value.Value{}, perr.New(perr.NullError, "unexpected null in date column %q", col)
		}
		t, err := asTime(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.Date(t), nil
	case types.Int, types.Float:
		if isNull {
			return value.Value{}, perr.New(perr.NullError, "unexpected null in number column %q", col)
		}
		return value.Number(asFloat(raw)), nil
	}
	return value.Value{}, perr.New(perr.TypeError, "unsupported inferred type for column %q", col)
}

func asString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case []byte:
		return string(v) == "1" || parseBoolLoose(string(v))
	default:
		return false
	}
}

func parseBoolLoose(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func asTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case []byte:
		t, err := time.Parse(time.RFC3339, string(v))
		if err != nil {
			return time.Time{}, perr.New(perr.TypeError, "cannot parse %q as a date", string(v))
		}
		return t, nil
	}
	return time.Time{}, perr.New(perr.TypeError, "unsupported date column value %v", raw)
}

func asFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}
