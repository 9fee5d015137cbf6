package codec

import "fmt"

// CodingError is a structured encode/decode failure. Path points at the JSON
// location that failed, using dot notation with [i] for array indices.
type CodingError struct {
	Path    string
	Message string
	cause   error
}

// Error implements the error interface.
func (e *CodingError) Error() string {
	where := e.Path
	if where == "" {
		where = "$"
	}
	if e.cause != nil {
		return fmt.Sprintf("codec: %s at %s: %v", e.Message, where, e.cause)
	}
	return fmt.Sprintf("codec: %s at %s", e.Message, where)
}

// Unwrap returns the underlying error.
func (e *CodingError) Unwrap() error {
	return e.cause
}

func codingErrorf(path, format string, args ...any) *CodingError {
	return &CodingError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
