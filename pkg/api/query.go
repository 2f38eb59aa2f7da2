package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EncodeQuery serializes params the way the server's query parser expects:
// arrays as key[]=v, nested maps as key[sub]=v. Keys and values are
// percent-encoded (brackets included) and map keys are emitted in sorted order.
func EncodeQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	var pairs []string
	for _, k := range sortedKeys(params) {
		pairs = appendQueryPairs(pairs, k, params[k])
	}
	return strings.Join(pairs, "&")
}

func appendQueryPairs(pairs []string, key string, value any) []string {
	switch v := value.(type) {
	case nil:
		return append(pairs, encodeComponent(key)+"=")
	case string:
		return appendScalar(pairs, key, v)
	case bool:
		return appendScalar(pairs, key, strconv.FormatBool(v))
	case json.Number:
		return appendScalar(pairs, key, v.String())
	case time.Time:
		return appendScalar(pairs, key, v.UTC().Format(isoMillis))
	case map[string]any:
		for _, k := range sortedKeys(v) {
			pairs = appendQueryPairs(pairs, key+"["+k+"]", v[k])
		}
		return pairs
	case []any:
		for _, elem := range v {
			pairs = appendQueryPairs(pairs, key+"[]", elem)
		}
		return pairs
	case fmt.Stringer:
		return appendScalar(pairs, key, v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return append(pairs, encodeComponent(key)+"=")
		}
		return appendQueryPairs(pairs, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return pairs
		}
		for i := 0; i < rv.Len(); i++ {
			pairs = appendQueryPairs(pairs, key+"[]", rv.Index(i).Interface())
		}
		return pairs
	case reflect.Map:
		keys := rv.MapKeys()
		names := make([]string, 0, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for _, k := range keys {
			name := fmt.Sprint(k.Interface())
			names = append(names, name)
			byName[name] = rv.MapIndex(k)
		}
		sort.Strings(names)
		for _, name := range names {
			pairs = appendQueryPairs(pairs, key+"["+name+"]", byName[name].Interface())
		}
		return pairs
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendScalar(pairs, key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return appendScalar(pairs, key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return appendScalar(pairs, key, strconv.FormatFloat(rv.Float(), 'f', -1, 32))
	case reflect.Float64:
		return appendScalar(pairs, key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.String:
		return appendScalar(pairs, key, rv.String())
	case reflect.Bool:
		return appendScalar(pairs, key, strconv.FormatBool(rv.Bool()))
	case reflect.Struct:
		if m, err := toMap(value); err == nil {
			return appendQueryPairs(pairs, key, m)
		}
	}
	return appendScalar(pairs, key, fmt.Sprint(value))
}

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func appendScalar(pairs []string, key, value string) []string {
	return append(pairs, encodeComponent(key)+"="+encodeComponent(value))
}

// encodeComponent percent-encodes everything outside the RFC 3986 unreserved
// set. Spaces become %20 rather than +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeQuery parses a bracket-notation query string back into nested maps
// and slices. All leaf values are strings.
//
// Elements of an array of objects are rebuilt by merging consecutive keys into
// the last element until a key repeats, which inverts EncodeQuery's output.
func DecodeQuery(raw string) (map[string]any, error) {
	out := map[string]any{}
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid query value for %q: %w", key, err)
		}
		base, segs := splitBracketKey(key)
		next, err := assignQueryValue(out[base], segs, value)
		if err != nil {
			return nil, fmt.Errorf("query key %q: %w", key, err)
		}
		out[base] = next
	}
	return out, nil
}

// splitBracketKey splits "a[b][]" into "a" and ["b", ""]. Keys with
// unbalanced brackets are returned whole.
func splitBracketKey(key string) (string, []string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return key, nil
	}
	base, rest := key[:open], key[open:]
	var segs []string
	for rest != "" {
		if rest[0] != '[' {
			return key, nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	return base, segs
}

func assignQueryValue(current any, segs []string, value string) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]

	if seg == "" {
		var list []any
		switch c := current.(type) {
		case nil:
		case []any:
			list = c
		default:
			return nil, fmt.Errorf("cannot append to non-array value")
		}
		if len(segs) == 1 {
			return append(list, value), nil
		}
		if n := len(list); n > 0 && len(segs) >= 2 {
			if last, ok := list[n-1].(map[string]any); ok && segs[1] != "" {
				if _, taken := last[segs[1]]; !taken {
					merged, err := assignQueryValue(last, segs[1:], value)
					if err != nil {
						return nil, err
					}
					list[n-1] = merged
					return list, nil
				}
			}
		}
		elem, err := assignQueryValue(nil, segs[1:], value)
		if err != nil {
			return nil, err
		}
		return append(list, elem), nil
	}

	var m map[string]any
	switch c := current.(type) {
	case nil:
		m = map[string]any{}
	case map[string]any:
		m = c
	default:
		return nil, fmt.Errorf("cannot set field %q on non-object value", seg)
	}
	next, err := assignQueryValue(m[seg], segs[1:], value)
	if err != nil {
		return nil, err
	}
	m[seg] = next
	return m, nil
}

// toMap converts a JSON-encodable value into a generic map.
func toMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("expected an object, got %s", describeJSON(data))
	}
	return out, nil
}
