// Package httplog provides a small stdout/null Logger pair for the
// HTTP server, tagging each line with a per-request correlation id.
package httplog

import (
	"fmt"

	"github.com/google/uuid"
)

// Logger mirrors database.Logger's shape so the server can be silenced
// the same way the schema-diffing CLI binaries are.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

type StdoutLogger struct{}

func (s StdoutLogger) Print(v ...interface{})                 { fmt.Print(v...) }
func (s StdoutLogger) Printf(format string, v ...interface{}) { fmt.Printf(format, v...) }
func (s StdoutLogger) Println(v ...interface{})               { fmt.Println(v...) }

type NullLogger struct{}

func (n NullLogger) Print(v ...interface{})                 {}
func (n NullLogger) Printf(format string, v ...interface{}) {}
func (n NullLogger) Println(v ...interface{})               {}

// NewRequestID mints a correlation id to thread through one request's
// log lines.
func NewRequestID() string {
	return uuid.New().String()
}
