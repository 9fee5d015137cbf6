package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/restline/go-restline/codec"
)

// FlattenQuery converts an arbitrary encodable value into flat query
// parameters: the value is encoded to a JSON tree with the given coding,
// nested object keys are dot-joined, and arrays of scalars are comma-joined.
// Null entries are omitted. Objects or arrays nested inside arrays cannot be
// represented and yield a QueryError.
func FlattenQuery(c codec.Coding, v any) (map[string]string, error) {
	tree, err := c.ToJSONValue(v)
	if err != nil {
		return nil, &QueryError{Reason: "query values are not encodable", wrapped: err}
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, &QueryError{Reason: fmt.Sprintf("query values must encode to an object, got %T", tree)}
	}

	out := make(map[string]string)
	if err := flattenObject("", obj, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenObject(prefix string, obj map[string]any, out map[string]string) error {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch node := v.(type) {
		case nil:
			// Null values carry no query representation.
		case map[string]any:
			if err := flattenObject(key, node, out); err != nil {
				return err
			}
		case []any:
			joined, err := joinScalars(key, node)
			if err != nil {
				return err
			}
			out[key] = joined
		default:
			leaf, err := scalarString(key, node)
			if err != nil {
				return err
			}
			out[key] = leaf
		}
	}
	return nil
}

func joinScalars(key string, items []any) (string, error) {
	var joined string
	for i, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return "", &QueryError{Reason: fmt.Sprintf("array %q contains a nested %T, which has no query representation", key, item)}
		case nil:
			return "", &QueryError{Reason: fmt.Sprintf("array %q contains null, which has no query representation", key)}
		}
		leaf, err := scalarString(key, item)
		if err != nil {
			return "", err
		}
		if i > 0 {
			joined += ","
		}
		joined += leaf
	}
	return joined, nil
}

func scalarString(key string, v any) (string, error) {
	switch leaf := v.(type) {
	case string:
		return leaf, nil
	case json.Number:
		return leaf.String(), nil
	case bool:
		return strconv.FormatBool(leaf), nil
	case float64:
		return strconv.FormatFloat(leaf, 'g', -1, 64), nil
	default:
		return "", &QueryError{Reason: fmt.Sprintf("value for %q has unsupported type %T", key, v)}
	}
}
