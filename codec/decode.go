package codec

import (
	"encoding/base64"
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

var (
	timeType        = reflect.TypeOf(time.Time{})
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// decodeInto decodes a generic JSON tree into v, which must be a non-nil
// pointer.
func (c Coding) decodeInto(tree any, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return codingErrorf("", "decode target must be a non-nil pointer, got %T", v)
	}
	return c.decodeValue(tree, rv.Elem(), "")
}

func (c Coding) decodeValue(tree any, rv reflect.Value, path string) error {
	if rv.Type() == timeType {
		if tree == nil {
			rv.SetZero()
			return nil
		}
		t, err := c.decodeTime(tree, path)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if tree == nil {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return c.decodeValue(tree, rv.Elem(), path)
	}

	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		raw, err := json.Marshal(tree)
		if err != nil {
			return &CodingError{Path: path, Message: "re-encode subtree", cause: err}
		}
		if err := rv.Addr().Interface().(json.Unmarshaler).UnmarshalJSON(raw); err != nil {
			return &CodingError{Path: path, Message: "UnmarshalJSON failed", cause: err}
		}
		return nil
	}

	if tree == nil {
		rv.SetZero()
		return nil
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return codingErrorf(path, "cannot decode into non-empty interface %s", rv.Type())
		}
		rv.Set(reflect.ValueOf(normalizeTree(tree)))
		return nil
	case reflect.Bool:
		b, ok := tree.(bool)
		if !ok {
			return codingErrorf(path, "expected bool, got %T", tree)
		}
		rv.SetBool(b)
		return nil
	case reflect.String:
		s, ok := tree.(string)
		if !ok {
			return codingErrorf(path, "expected string, got %T", tree)
		}
		rv.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := tree.(json.Number)
		if !ok {
			return codingErrorf(path, "expected number, got %T", tree)
		}
		i, err := n.Int64()
		if err != nil || rv.OverflowInt(i) {
			return codingErrorf(path, "number %s does not fit in %s", n, rv.Type())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := tree.(json.Number)
		if !ok {
			return codingErrorf(path, "expected number, got %T", tree)
		}
		i, err := n.Int64()
		if err != nil || i < 0 || rv.OverflowUint(uint64(i)) {
			return codingErrorf(path, "number %s does not fit in %s", n, rv.Type())
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		n, ok := tree.(json.Number)
		if !ok {
			return codingErrorf(path, "expected number, got %T", tree)
		}
		f, err := n.Float64()
		if err != nil || rv.OverflowFloat(f) {
			return codingErrorf(path, "number %s does not fit in %s", n, rv.Type())
		}
		rv.SetFloat(f)
		return nil
	case reflect.Slice:
		return c.decodeSlice(tree, rv, path)
	case reflect.Array:
		items, ok := tree.([]any)
		if !ok {
			return codingErrorf(path, "expected array, got %T", tree)
		}
		n := rv.Len()
		if len(items) < n {
			n = len(items)
		}
		for i := 0; i < n; i++ {
			if err := c.decodeValue(items[i], rv.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		return c.decodeMap(tree, rv, path)
	case reflect.Struct:
		return c.decodeStruct(tree, rv, path)
	default:
		return codingErrorf(path, "unsupported target type %s", rv.Type())
	}
}

func (c Coding) decodeSlice(tree any, rv reflect.Value, path string) error {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return c.decodeBytes(tree, rv, path)
	}
	items, ok := tree.([]any)
	if !ok {
		return codingErrorf(path, "expected array, got %T", tree)
	}
	out := reflect.MakeSlice(rv.Type(), len(items), len(items))
	for i, item := range items {
		if err := c.decodeValue(item, out.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (c Coding) decodeBytes(tree any, rv reflect.Value, path string) error {
	switch v := tree.(type) {
	case string:
		raw, err := base64DecodeString(v)
		if err != nil {
			return &CodingError{Path: path, Message: "invalid base64 data", cause: err}
		}
		rv.SetBytes(raw)
		return nil
	case []any:
		raw := make([]byte, len(v))
		for i, item := range v {
			n, ok := item.(json.Number)
			if !ok {
				return codingErrorf(indexPath(path, i), "expected byte value, got %T", item)
			}
			b, err := n.Int64()
			if err != nil || b < 0 || b > 255 {
				return codingErrorf(indexPath(path, i), "byte value %s out of range", n)
			}
			raw[i] = byte(b)
		}
		rv.SetBytes(raw)
		return nil
	default:
		return codingErrorf(path, "expected base64 string or byte array, got %T", tree)
	}
}

func (c Coding) decodeMap(tree any, rv reflect.Value, path string) error {
	if rv.Type().Key().Kind() != reflect.String {
		return codingErrorf(path, "unsupported map key type %s", rv.Type().Key())
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return codingErrorf(path, "expected object, got %T", tree)
	}
	out := reflect.MakeMapWithSize(rv.Type(), len(m))
	elemType := rv.Type().Elem()
	for k, item := range m {
		elem := reflect.New(elemType).Elem()
		if err := c.decodeValue(item, elem, childPath(path, k)); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), elem)
	}
	rv.Set(out)
	return nil
}

func (c Coding) decodeStruct(tree any, rv reflect.Value, path string) error {
	m, ok := tree.(map[string]any)
	if !ok {
		return codingErrorf(path, "expected object, got %T", tree)
	}

	var lowered map[string]string // lazily built lowercase key lookup
	for _, entry := range c.structFields(rv.Type(), nil) {
		item, present := m[entry.key]
		if !present {
			if lowered == nil {
				lowered = make(map[string]string, len(m))
				for k := range m {
					lowered[strings.ToLower(k)] = k
				}
			}
			orig, found := lowered[strings.ToLower(entry.key)]
			if !found {
				continue
			}
			item = m[orig]
		}
		field := fieldByIndexAlloc(rv, entry.index)
		if err := c.decodeValue(item, field, childPath(path, entry.key)); err != nil {
			return err
		}
	}
	return nil
}

type fieldEntry struct {
	key   string
	index []int
}

// structFields lists the decodable fields of a struct type, descending into
// promoted embedded structs.
func (c Coding) structFields(t reflect.Type, prefix []int) []fieldEntry {
	var entries []fieldEntry
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tagName, _ := parseJSONTag(f.Tag.Get("json"))
		if tagName == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if f.Anonymous && tagName == "" && isStructLike(f.Type) {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft != timeType {
				entries = append(entries, c.structFields(ft, index)...)
				continue
			}
		}
		entries = append(entries, fieldEntry{key: c.effectiveKey(f.Name, tagName), index: index})
	}
	return entries
}

// fieldByIndexAlloc resolves an index chain, allocating nil embedded
// pointers on the way down.
func fieldByIndexAlloc(rv reflect.Value, index []int) reflect.Value {
	for n, i := range index {
		if n > 0 && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(i)
	}
	return rv
}

// base64DecodeString accepts both padded and unpadded standard encoding.
func base64DecodeString(s string) ([]byte, error) {
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// normalizeTree converts json.Number leaves to float64 so values assigned to
// empty interfaces look like encoding/json output.
func normalizeTree(tree any) any {
	switch v := tree.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeTree(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeTree(item)
		}
		return out
	default:
		return tree
	}
}
