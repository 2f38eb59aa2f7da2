package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Call runs the named catalog operation. args are the operation's required
// positional parameters in declaration order; payload is sent as query
// parameters for GET and as the JSON body otherwise. The decoded response
// body, envelope included, is written into result.
//
// Argument and payload checks all happen before any request is issued.
func (c *Client) Call(ctx context.Context, name string, args []string, payload any, result any) error {
	op, ok := Lookup(name)
	if !ok {
		return &UnknownOperationError{Name: name}
	}
	return dispatch(ctx, c, op, args, payload, result)
}

// Invoke runs a catalog operation and decodes its envelope into Envelope[T].
func Invoke[T any](ctx context.Context, c *Client, name string, args []string, payload any) (*Envelope[T], error) {
	var env Envelope[T]
	if err := c.Call(ctx, name, args, payload, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func dispatch(ctx context.Context, exec HTTPExecutor, op Operation, args []string, payload any, result any) error {
	path, values, err := bindParams(op, args)
	if err != nil {
		return err
	}

	payload, err = preparePayload(op, payload)
	if err != nil {
		return err
	}

	if len(op.BodyParams) > 0 {
		body, err := toMap(payload)
		if err != nil {
			return &TypeMismatchError{Operation: op.Name, Parameter: op.payloadName(), Expected: "an object", Got: describeValue(payload)}
		}
		merged := make(map[string]any, len(body)+len(op.BodyParams))
		for k, v := range body {
			merged[k] = v
		}
		for _, p := range op.BodyParams {
			merged[p] = values[p]
		}
		payload = merged
	}

	switch op.Method {
	case http.MethodGet:
		params, err := toMap(payload)
		if err != nil {
			return &TypeMismatchError{Operation: op.Name, Parameter: "params", Expected: "an object", Got: describeValue(payload)}
		}
		return exec.Get(ctx, path, params, op.Root, result)
	case http.MethodPost:
		return exec.Post(ctx, path, payload, op.Root, result)
	case http.MethodPut:
		return exec.Put(ctx, path, payload, op.Root, result)
	case http.MethodDelete:
		return exec.Delete(ctx, path, payload, op.Root, result)
	default:
		return fmt.Errorf("%s: unsupported method %s", op.Name, op.Method)
	}
}

// bindParams checks the positional arguments and fills the path template.
func bindParams(op Operation, args []string) (string, map[string]string, error) {
	if len(args) > len(op.Params) {
		return "", nil, &UnexpectedArgumentError{Operation: op.Name, Expected: len(op.Params), Got: len(args)}
	}
	values := make(map[string]string, len(op.Params))
	pairs := make([]string, 0, 2*len(op.Params))
	for i, name := range op.Params {
		if i >= len(args) || strings.TrimSpace(args[i]) == "" {
			return "", nil, &MissingParameterError{Operation: op.Name, Parameter: name}
		}
		values[name] = args[i]
		pairs = append(pairs, "{"+name+"}", args[i])
	}
	// One pass, so a value that looks like a placeholder is never expanded.
	return strings.NewReplacer(pairs...).Replace(op.Path), values, nil
}

func preparePayload(op Operation, payload any) (any, error) {
	switch op.Payload {
	case PayloadNone:
		return nil, nil
	case PayloadRequired:
		if isNil(payload) {
			return nil, &MissingParameterError{Operation: op.Name, Parameter: op.payloadName()}
		}
	case PayloadBulk:
		if isNil(payload) {
			return nil, &MissingParameterError{Operation: op.Name, Parameter: op.payloadName()}
		}
		if !isSequence(payload) {
			return nil, &TypeMismatchError{Operation: op.Name, Parameter: op.payloadName(), Expected: "an array of objects", Got: describeValue(payload)}
		}
		return map[string]any{bulkRowsKey: payload}, nil
	}
	if isNil(payload) {
		return nil, nil
	}
	return payload, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice:
		if raw, ok := v.(json.RawMessage); ok {
			trimmed := bytes.TrimSpace(raw)
			return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
		}
		return rv.IsNil()
	}
	return false
}

// isSequence reports whether v encodes as a JSON array.
func isSequence(v any) bool {
	if raw, ok := v.(json.RawMessage); ok {
		trimmed := bytes.TrimSpace(raw)
		return len(trimmed) > 0 && trimmed[0] == '['
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func describeValue(v any) string {
	if raw, ok := v.(json.RawMessage); ok {
		return describeJSON(raw)
	}
	if v == nil {
		return "null"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	}
	return rv.Type().String()
}

func describeJSON(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 'n':
		return "null"
	case 't', 'f':
		return "a boolean"
	}
	return "a number"
}
