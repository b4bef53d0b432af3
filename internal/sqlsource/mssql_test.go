package sqlsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSNIncludesCredentialsAndDatabase(t *testing.T) {
	dsn := BuildDSN(Config{User: "sa", Password: "p@ss", Host: "127.0.0.1", Port: 1433, DbName: "orders"})
	assert.Contains(t, dsn, "sqlserver://")
	assert.Contains(t, dsn, "127.0.0.1:1433")
	assert.Contains(t, dsn, "database=orders")
}

func TestAsBoolFromByteSlice(t *testing.T) {
	assert.True(t, asBool([]byte("1")))
	assert.True(t, asBool([]byte("true")))
	assert.False(t, asBool([]byte("0")))
}

func TestAsFloatFromByteSlice(t *testing.T) {
	assert.Equal(t, 3.5, asFloat([]byte("3.5")))
}

func TestParseBoolLoose(t *testing.T) {
	assert.True(t, parseBoolLoose("true"))
	assert.False(t, parseBoolLoose("nonsense"))
}
