package codec

import (
	"encoding/json"
	"strconv"
	"time"
)

// iso8601Millis is the fractional ISO-8601 layout used for encoding.
const iso8601Millis = "2006-01-02T15:04:05.000Z07:00"

// encodeTime converts t into a JSON leaf per the coding's date strategy.
func (c Coding) encodeTime(t time.Time, path string) (any, error) {
	switch c.Dates {
	case DateSecondsSince1970:
		return json.Number(strconv.FormatFloat(float64(t.UnixMilli())/1000, 'f', -1, 64)), nil
	case DateMillisecondsSince1970:
		return json.Number(strconv.FormatInt(t.UnixMilli(), 10)), nil
	case DateISO8601:
		return t.UTC().Format(time.RFC3339), nil
	case DateISO8601Fractional:
		return t.UTC().Format(iso8601Millis), nil
	case DateFormatted:
		loc := c.DateLocation
		if loc == nil {
			loc = time.UTC
		}
		if c.DateLayout == "" {
			return nil, codingErrorf(path, "formatted date strategy requires a layout")
		}
		return t.In(loc).Format(c.DateLayout), nil
	default:
		return t.UTC().Format(time.RFC3339Nano), nil
	}
}

// decodeTime parses a JSON leaf into a time.Time per the coding's date
// strategy. ISO-8601 decoding attempts the fractional layout first and falls
// back to the whole-second form.
func (c Coding) decodeTime(leaf any, path string) (time.Time, error) {
	switch c.Dates {
	case DateSecondsSince1970:
		secs, err := leafFloat(leaf)
		if err != nil {
			return time.Time{}, codingErrorf(path, "expected Unix seconds, got %T", leaf)
		}
		return time.UnixMilli(int64(secs * 1000)).UTC(), nil
	case DateMillisecondsSince1970:
		ms, err := leafFloat(leaf)
		if err != nil {
			return time.Time{}, codingErrorf(path, "expected Unix milliseconds, got %T", leaf)
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	case DateISO8601, DateISO8601Fractional:
		s, ok := leaf.(string)
		if !ok {
			return time.Time{}, codingErrorf(path, "expected ISO-8601 string, got %T", leaf)
		}
		return parseISO8601(s, path)
	case DateFormatted:
		s, ok := leaf.(string)
		if !ok {
			return time.Time{}, codingErrorf(path, "expected formatted date string, got %T", leaf)
		}
		loc := c.DateLocation
		if loc == nil {
			loc = time.UTC
		}
		t, err := time.ParseInLocation(c.DateLayout, s, loc)
		if err != nil {
			return time.Time{}, &CodingError{Path: path, Message: "unparseable date", cause: err}
		}
		return t, nil
	default:
		s, ok := leaf.(string)
		if !ok {
			return time.Time{}, codingErrorf(path, "expected RFC 3339 string, got %T", leaf)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, &CodingError{Path: path, Message: "unparseable date", cause: err}
		}
		return t, nil
	}
}

// parseISO8601 tries the stricter fractional layout first, then the lenient
// whole-second form.
func parseISO8601(s, path string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &CodingError{Path: path, Message: "unparseable ISO-8601 date", cause: err}
	}
	return t, nil
}

func leafFloat(leaf any) (float64, error) {
	switch n := leaf.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	default:
		return 0, strconv.ErrSyntax
	}
}
