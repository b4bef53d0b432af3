// Package config loads server configuration from a YAML file, with
// MSSQL_PWD-style environment overrides for secrets.
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
)

// ServerConfig is pivotqld's listen address, table directory, and
// optional MSSQL connection settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	TableDir   string `yaml:"table_dir"`

	MSSQL struct {
		Host     string     `yaml:"host"`
		Port     int        `yaml:"port"`
		User     string     `yaml:"user"`
		Password string     `yaml:"password"`
		DbName   string     `yaml:"db_name"`
		Tables   []SQLTable `yaml:"tables"`
	} `yaml:"mssql"`
}

// SQLTable maps a table name exposed over /tables/{name} onto a SQL
// Server table reached through MSSQL, routing that name to the SQL
// path (internal/sqlsource, internal/sqlgen) instead of the CSV
// directory. Its declared columns stand in for the CSV path's sampled
// column inference, since a live SQL table has no rows to sample
// ahead of time.
type SQLTable struct {
	Name    string      `yaml:"name"`
	SQLName string      `yaml:"sql_name"`
	Columns []SQLColumn `yaml:"columns"`
}

// SQLColumn declares one column's exposed name and type ("string",
// "number", "bool", or "date").
type SQLColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Metadata converts the declared columns into query.Metadata, in
// declared order.
func (t SQLTable) Metadata() (query.Metadata, error) {
	meta := make(query.Metadata, 0, len(t.Columns))
	for _, c := range t.Columns {
		it, err := parseColumnType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("table %q column %q: %w", t.Name, c.Name, err)
		}
		meta = append(meta, query.ColumnMeta{Name: c.Name, Type: it})
	}
	return meta, nil
}

func parseColumnType(s string) (types.InferredType, error) {
	switch s {
	case "string":
		return types.T(types.StringK), nil
	case "number":
		return types.T(types.Float), nil
	case "bool":
		return types.T(types.Bool), nil
	case "date":
		return types.DateType(types.CultureInvariant), nil
	}
	return types.InferredType{}, fmt.Errorf("unknown column type %q (want string, number, bool, or date)", s)
}

// Defaults mirrors the conservative defaults a bare invocation should
// fall back to.
func Defaults() ServerConfig {
	c := ServerConfig{
		ListenAddr: ":8080",
		TableDir:   "./tables",
	}
	c.MSSQL.Host = "127.0.0.1"
	c.MSSQL.Port = 1433
	c.MSSQL.User = "sa"
	return c
}

// Load reads a YAML file at path over Defaults(), then applies the
// $MSSQL_PWD environment override for the password field.
func Load(path string) (ServerConfig, error) {
	c := Defaults()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}

	if pw := os.Getenv("MSSQL_PWD"); pw != "" {
		c.MSSQL.Password = pw
	}
	return c, nil
}
