// Package perr defines the typed error kinds the pivot/query engine can
// raise. A request is fatal on the first error; there is no partial
// recovery or retry inside the core.
package perr

import "fmt"

// Kind classifies an Error for the HTTP collaborator's status mapping.
type Kind int

const (
	// ParseError covers malformed DSL, unknown operators, unparseable
	// conditions and invalid column/table names rejected by the parser.
	ParseError Kind = iota
	// TypeError covers comparisons of incompatible values or a
	// relational operator illegal for a cell's inferred type.
	TypeError
	// DataError covers an empty CSV source or a column/value type
	// mismatch discovered while materializing rows.
	DataError
	// NullError covers an unexpected null read from a non-string SQL column.
	NullError
	// InvalidIdentifier covers a column or table name the SQL formatter
	// refuses to emit.
	InvalidIdentifier
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case TypeError:
		return "TypeError"
	case DataError:
		return "DataError"
	case NullError:
		return "NullError"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	default:
		return "UnknownError"
	}
}

// Error is the single error type the core returns. The HTTP collaborator
// maps Kind to a status code; the CLI collaborator just prints it.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// As reports whether err is a *perr.Error and returns it.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
