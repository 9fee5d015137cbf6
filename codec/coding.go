// Package codec implements configurable JSON coding for the client. A Coding
// is a plain value describing date, key, and binary-data conventions; Marshal
// and Unmarshal apply those conventions through a generic JSON tree so the
// same configuration drives both directions. Presets are named values of the
// same type, not separate code paths.
package codec

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateStrategy selects how time.Time values are written and read.
type DateStrategy int

const (
	// DateDeferred uses the platform default (RFC 3339 with nanoseconds).
	DateDeferred DateStrategy = iota
	// DateSecondsSince1970 encodes dates as fractional Unix seconds.
	DateSecondsSince1970
	// DateMillisecondsSince1970 encodes dates as Unix milliseconds.
	DateMillisecondsSince1970
	// DateISO8601 encodes dates as ISO-8601 without fractional seconds.
	DateISO8601
	// DateISO8601Fractional encodes dates as ISO-8601 with millisecond
	// precision. Decoding accepts both fractional and whole-second forms.
	DateISO8601Fractional
	// DateFormatted uses the Coding's DateLayout and DateLocation.
	DateFormatted
)

// KeyStrategy selects how object keys are derived from struct field names.
type KeyStrategy int

const (
	// KeysVerbatim uses field names (or their json tags) unchanged.
	KeysVerbatim KeyStrategy = iota
	// KeysSnakeCase converts untagged field names to snake_case.
	// Explicit json tags are always authoritative.
	KeysSnakeCase
)

// DataStrategy selects how []byte values are written and read.
type DataStrategy int

const (
	// DataBase64 encodes byte slices as standard base64 strings.
	DataBase64 DataStrategy = iota
	// DataVerbatim encodes byte slices as JSON arrays of numbers.
	DataVerbatim
)

// Coding describes one JSON coding convention.
type Coding struct {
	Dates DateStrategy
	Keys  KeyStrategy
	Data  DataStrategy

	// DateLayout and DateLocation apply when Dates is DateFormatted.
	DateLayout   string
	DateLocation *time.Location

	// PrettyPrinted emits indented output.
	PrettyPrinted bool
}

// Default returns the default coding: deferred dates, verbatim keys, base64
// data.
func Default() Coding {
	return Coding{}
}

// ISO8601Coding encodes and decodes dates as ISO-8601 with fractional
// seconds.
func ISO8601Coding() Coding {
	return Coding{Dates: DateISO8601Fractional}
}

// WebAPICoding is the convention most JSON web APIs use: snake_case keys and
// ISO-8601 dates with fractional seconds.
func WebAPICoding() Coding {
	return Coding{Dates: DateISO8601Fractional, Keys: KeysSnakeCase}
}

// Marshal encodes v as JSON according to the coding's conventions.
func (c Coding) Marshal(v any) ([]byte, error) {
	tree, err := c.encodeValue(v, "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.PrettyPrinted {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(tree); err != nil {
		return nil, &CodingError{Path: "", Message: "encode tree", cause: err}
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes JSON data into v according to the coding's conventions.
// v must be a non-nil pointer.
func (c Coding) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return &CodingError{Path: "", Message: "invalid JSON", cause: err}
	}
	return c.decodeInto(tree, v)
}

// ToJSONValue converts v into a generic JSON tree (maps, slices, strings,
// json.Number-compatible primitives, bools, nil) honoring the coding's
// conventions. The client's query flattener visits this representation.
func (c Coding) ToJSONValue(v any) (any, error) {
	return c.encodeValue(v, "")
}
