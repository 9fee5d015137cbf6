package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// encodeValue converts an arbitrary Go value into a generic JSON tree,
// applying the coding's date, key, and data strategies along the way.
func (c Coding) encodeValue(v any, path string) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t := v.(type) {
	case time.Time:
		return c.encodeTime(t, path)
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return c.encodeTime(*t, path)
	case json.Number:
		return t, nil
	case []byte:
		return c.encodeBytes(t), nil
	}

	if m, ok := v.(json.Marshaler); ok {
		data, err := m.MarshalJSON()
		if err != nil {
			return nil, &CodingError{Path: path, Message: "MarshalJSON failed", cause: err}
		}
		return decodeTree(data, path)
	}

	return c.encodeReflect(reflect.ValueOf(v), path)
}

func (c Coding) encodeReflect(rv reflect.Value, path string) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return c.encodeValue(rv.Elem().Interface(), path)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return json.Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return json.Number(strconv.FormatFloat(rv.Float(), 'g', -1, 32)), nil
	case reflect.Float64:
		return json.Number(strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return nil, nil
			}
			return c.encodeBytes(rv.Bytes()), nil
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := c.encodeValue(rv.Index(i).Interface(), indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, codingErrorf(path, "unsupported map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			enc, err := c.encodeValue(iter.Value().Interface(), childPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return out, nil
	case reflect.Struct:
		return c.encodeStruct(rv, path)
	default:
		return nil, codingErrorf(path, "unsupported type %s", rv.Type())
	}
}

func (c Coding) encodeStruct(rv reflect.Value, path string) (map[string]any, error) {
	t := rv.Type()
	out := make(map[string]any, t.NumField())
	var embedded map[string]any

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tagName, opts := parseJSONTag(f.Tag.Get("json"))
		if tagName == "-" {
			continue
		}

		fv := rv.Field(i)
		if f.Anonymous && tagName == "" && isStructLike(f.Type) {
			inner, err := c.encodeValue(fv.Interface(), path)
			if err != nil {
				return nil, err
			}
			if m, ok := inner.(map[string]any); ok {
				if embedded == nil {
					embedded = make(map[string]any)
				}
				for k, v := range m {
					embedded[k] = v
				}
			}
			continue
		}

		if opts.omitEmpty && isEmptyValue(fv) {
			continue
		}

		key := c.effectiveKey(f.Name, tagName)
		enc, err := c.encodeValue(fv.Interface(), childPath(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = enc
	}

	// Named fields shadow promoted embedded fields.
	for k, v := range embedded {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out, nil
}

func (c Coding) encodeBytes(b []byte) any {
	if c.Data == DataVerbatim {
		out := make([]any, len(b))
		for i, v := range b {
			out[i] = json.Number(strconv.FormatUint(uint64(v), 10))
		}
		return out
	}
	return base64.StdEncoding.EncodeToString(b)
}

type jsonTagOpts struct {
	omitEmpty bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	parts := strings.Split(tag, ",")
	var opts jsonTagOpts
	for _, p := range parts[1:] {
		if p == "omitempty" {
			opts.omitEmpty = true
		}
	}
	return parts[0], opts
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

// decodeTree parses raw JSON into a generic tree preserving number precision.
func decodeTree(data []byte, path string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, &CodingError{Path: path, Message: "invalid JSON", cause: err}
	}
	return tree, nil
}
