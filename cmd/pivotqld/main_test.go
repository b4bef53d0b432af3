package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivotql/pivotql/internal/config"
	"github.com/pivotql/pivotql/internal/httplog"
)

func newTestCache(t *testing.T) *tableCache {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("region,amount\nwest,10\neast,5\n"), 0644)
	assert.NoError(t, err)
	return newTableCache(dir)
}

func doGet(t *testing.T, cache *tableCache, path string) *httptest.ResponseRecorder {
	t.Helper()
	return doGetRouted(t, cache, &sqlRouter{}, path)
}

func doGetRouted(t *testing.T, cache *tableCache, route *sqlRouter, path string) *httptest.ResponseRecorder {
	t.Helper()
	handler := handleTable(cache, route, httplog.NullLogger{})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleTableReturns200ForKnownTable(t *testing.T) {
	cache := newTestCache(t)
	rec := doGet(t, cache, "/tables/sales?q="+url.QueryEscape("metadata"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"region":"string","amount":"number"}`, rec.Body.String())
}

func TestHandleTableReturns422ForBadDataSourceTable(t *testing.T) {
	cache := newTestCache(t)
	rec := doGet(t, cache, "/tables/missing")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleTableReturns400ForUnparseableQuery(t *testing.T) {
	cache := newTestCache(t)
	rec := doGet(t, cache, "/tables/sales?q="+url.QueryEscape("bogus(x)"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTableMissingNameIs400(t *testing.T) {
	cache := newTestCache(t)
	rec := doGet(t, cache, "/tables/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sqlOrdersRouter(t *testing.T) *sqlRouter {
	t.Helper()
	cfg := config.ServerConfig{}
	cfg.MSSQL.Tables = []config.SQLTable{{
		Name:    "orders",
		SQLName: "dbo.orders",
		Columns: []config.SQLColumn{
			{Name: "id", Type: "number"},
			{Name: "customer", Type: "string"},
		},
	}}
	route, err := newSQLRouter(cfg)
	assert.NoError(t, err)
	return route
}

// A name bound under mssql.tables is answered through the SQL path
// even though no CSV file of that name exists; a Metadata action
// never reaches the database, so this is exercised without a live
// SQL Server.
func TestHandleTableRoutesSQLBoundNameForMetadata(t *testing.T) {
	cache := newTestCache(t)
	route := sqlOrdersRouter(t)

	rec := doGetRouted(t, cache, route, "/tables/orders?q="+url.QueryEscape("metadata"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"number","customer":"string"}`, rec.Body.String())
}

// GetSeries/GetRange are not answered on the SQL path; dispatch.RunSQL
// rejects them before ever touching the database.
func TestHandleTableSQLPathRejectsSeriesAction(t *testing.T) {
	cache := newTestCache(t)
	route := sqlOrdersRouter(t)

	rec := doGetRouted(t, cache, route, "/tables/orders?q="+url.QueryEscape("series(id,customer)"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A name not bound under mssql.tables still falls through to the CSV
// cache even when the router has other SQL-backed tables configured.
func TestHandleTableUnboundNameFallsBackToCSV(t *testing.T) {
	cache := newTestCache(t)
	route := sqlOrdersRouter(t)

	rec := doGetRouted(t, cache, route, "/tables/sales?q="+url.QueryEscape("metadata"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"region":"string","amount":"number"}`, rec.Body.String())
}
