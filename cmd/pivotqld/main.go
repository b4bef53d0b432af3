// Command pivotqld serves pivot queries over HTTP, reading tables
// either from a directory of CSV files or, for names mapped under the
// config's mssql.tables, from a live SQL Server table, and answering
// GET /tables/{name}?q=...
package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jessevdk/go-flags"

	"github.com/pivotql/pivotql/internal/config"
	"github.com/pivotql/pivotql/internal/csvsource"
	"github.com/pivotql/pivotql/internal/dispatch"
	"github.com/pivotql/pivotql/internal/eval"
	"github.com/pivotql/pivotql/internal/httplog"
	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/serialize"
	"github.com/pivotql/pivotql/internal/sqlsource"
	"github.com/pivotql/pivotql/util"
)

var version string

type options struct {
	ConfigFile string `short:"c" long:"config" description:"YAML server config file" value-name:"config_yaml"`
	Version    bool   `long:"version" description:"Show this version"`
}

// tableCache lazily loads and memoizes CSV tables found under
// ServerConfig.TableDir, keyed by name (filename without extension).
type tableCache struct {
	dir string
	mu  sync.Mutex
	hot map[string]*csvsource.Table
}

func newTableCache(dir string) *tableCache {
	return &tableCache{dir: dir, hot: map[string]*csvsource.Table{}}
}

func (c *tableCache) get(name string) (*csvsource.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.hot[name]; ok {
		return t, nil
	}

	path := filepath.Join(c.dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.New(perr.DataError, "no such table %q", name)
	}
	defer f.Close()

	t, err := csvsource.Load(name, f)
	if err != nil {
		return nil, err
	}
	c.hot[name] = t
	return t, nil
}

// sqlBinding is one config.SQLTable resolved down to what RunSQL needs:
// the underlying SQL table name and its declared column Metadata.
type sqlBinding struct {
	sqlName string
	meta    query.Metadata
}

// sqlRouter holds the shared *sql.DB and the name->sqlBinding map built
// from cfg.MSSQL.Tables. A nil db means no table in this server's
// config is SQL-backed, so every request falls through to the CSV
// table cache.
type sqlRouter struct {
	db       *sql.DB
	bindings map[string]sqlBinding
}

func newSQLRouter(cfg config.ServerConfig) (*sqlRouter, error) {
	if len(cfg.MSSQL.Tables) == 0 {
		return &sqlRouter{}, nil
	}

	bindings := make(map[string]sqlBinding, len(cfg.MSSQL.Tables))
	for _, t := range cfg.MSSQL.Tables {
		meta, err := t.Metadata()
		if err != nil {
			return nil, err
		}
		bindings[t.Name] = sqlBinding{sqlName: t.SQLName, meta: meta}
	}

	dsn := sqlsource.BuildDSN(sqlsource.Config{
		User:     cfg.MSSQL.User,
		Password: cfg.MSSQL.Password,
		Host:     cfg.MSSQL.Host,
		Port:     cfg.MSSQL.Port,
		DbName:   cfg.MSSQL.DbName,
	})
	db, err := sqlsource.Open(dsn)
	if err != nil {
		return nil, err
	}
	return &sqlRouter{db: db, bindings: bindings}, nil
}

func (r *sqlRouter) lookup(name string) (sqlBinding, bool) {
	if r.db == nil {
		return sqlBinding{}, false
	}
	b, ok := r.bindings[name]
	return b, ok
}

func main() {
	util.InitSlog()

	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	_, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config '%s': %s", opts.ConfigFile, err)
	}

	sqlRoute, err := newSQLRouter(cfg)
	if err != nil {
		log.Fatalf("Failed to wire mssql.tables: %s", err)
	}

	logger := httplog.Logger(httplog.StdoutLogger{})
	tables := newTableCache(cfg.TableDir)

	mux := http.NewServeMux()
	mux.HandleFunc("/tables/", handleTable(tables, sqlRoute, logger))

	logger.Printf("listening on %s, serving tables from %s (%d SQL-backed)\n",
		cfg.ListenAddr, cfg.TableDir, len(sqlRoute.bindings))
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, mux))
}

// handleTable handles GET /tables/{name}?q=...[&preview=1][&corrected-mean=1]: a name bound
// in sqlRoute is answered through dispatch.RunSQL against the live SQL
// table; everything else falls back to the CSV table cache and
// dispatch.RunInMemory. Either way the result is mapped through
// serialize.ToJSON, and any perr.Kind through writeError.
func handleTable(tables *tableCache, sqlRoute *sqlRouter, logger httplog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := httplog.NewRequestID()
		name := strings.TrimPrefix(r.URL.Path, "/tables/")
		name = strings.Trim(name, "/")
		if name == "" {
			http.Error(w, "missing table name", http.StatusBadRequest)
			return
		}

		var flagsList []string
		if r.URL.Query().Get("preview") == "1" {
			flagsList = append(flagsList, "preview")
		}
		if r.URL.Query().Get("corrected-mean") == "1" {
			flagsList = append(flagsList, "corrected-mean")
		}
		req := dispatch.Request{QueryString: r.URL.Query().Get("q"), Flags: flagsList}

		if binding, ok := sqlRoute.lookup(name); ok {
			result, err := dispatch.RunSQL(r.Context(), sqlRoute.db, binding.sqlName, binding.meta, req)
			if err != nil {
				writeError(w, logger, reqID, err)
				return
			}
			writeResult(w, logger, reqID, name, result)
			return
		}

		table, err := tables.get(name)
		if err != nil {
			writeError(w, logger, reqID, err)
			return
		}

		result, err := dispatch.RunInMemory(table, req)
		if err != nil {
			writeError(w, logger, reqID, err)
			return
		}
		writeResult(w, logger, reqID, name, result)
	}
}

// writeResult serializes result to JSON and writes it, or reports a
// serialization failure through writeError.
func writeResult(w http.ResponseWriter, logger httplog.Logger, reqID, name string, result eval.Result) {
	out, err := serialize.ToJSON(result)
	if err != nil {
		writeError(w, logger, reqID, err)
		return
	}
	logger.Printf("[%s] GET /tables/%s -> 200\n", reqID, name)
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// writeError maps a perr.Kind to an HTTP status:
// ParseError -> 400, TypeError/DataError -> 422, everything else -> 500.
func writeError(w http.ResponseWriter, logger httplog.Logger, reqID string, err error) {
	e, ok := perr.As(err)
	if !ok {
		logger.Printf("[%s] internal error: %s\n", reqID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case perr.ParseError:
		status = http.StatusBadRequest
	case perr.TypeError, perr.DataError:
		status = http.StatusUnprocessableEntity
	case perr.NullError, perr.InvalidIdentifier:
		status = http.StatusInternalServerError
	}

	logger.Printf("[%s] %s: %s -> %d\n", reqID, e.Kind, e.Message, status)
	http.Error(w, e.Error(), status)
}
