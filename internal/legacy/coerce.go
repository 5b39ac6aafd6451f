package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrUnparseable is wrapped by every coercion failure.
var ErrUnparseable = errors.New("unparseable legacy value")

// CoerceError records which legacy key held a value that could not be used.
type CoerceError struct {
	Key string
	Err error
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("legacy key %q: %v", e.Key, e.Err)
}

func (e *CoerceError) Unwrap() error { return e.Err }

// Coerce decodes a raw cache value. A value that is valid JSON is returned
// decoded (so `"Hello"` yields the string Hello and `[1,2]` a []any); any
// other text is returned unchanged as a string.
func Coerce(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	v, err := decodeJSON(trimmed)
	if err != nil {
		return raw
	}
	return v
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// CoerceString reads raw as text. Empty or null values report ok=false.
// Structured values (objects, arrays) cannot be used as text.
func CoerceString(raw string) (string, bool, error) {
	return valueString(Coerce(raw))
}

// valueString renders an already decoded value as text.
func valueString(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false, nil
		}
		return x, true, nil
	case json.Number:
		return x.String(), true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	}
	return "", false, fmt.Errorf("%w: expected text, got %s", ErrUnparseable, kindOf(v))
}

// CoerceBool reads raw as a boolean. It accepts JSON booleans, the strings
// true/false/yes/no/1/0 (any case) and the numbers 0 and 1.
func CoerceBool(raw string) (bool, bool, error) {
	return valueBool(Coerce(raw))
}

func valueBool(v any) (bool, bool, error) {
	switch x := v.(type) {
	case nil:
		return false, false, nil
	case bool:
		return x, true, nil
	case json.Number:
		switch x.String() {
		case "0":
			return false, true, nil
		case "1":
			return true, true, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "":
			return false, false, nil
		case "true", "yes", "1":
			return true, true, nil
		case "false", "no", "0":
			return false, true, nil
		}
	}
	return false, false, fmt.Errorf("%w: expected boolean, got %v", ErrUnparseable, v)
}

// CoerceList reads raw as a JSON array. A JSON string that itself holds an
// array (double-encoded) is unwrapped once.
func CoerceList(raw string) ([]any, bool, error) {
	v := unwrapEncoded(Coerce(raw))
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case []any:
		return x, true, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, false, nil
		}
	}
	return nil, false, fmt.Errorf("%w: expected list, got %s", ErrUnparseable, kindOf(v))
}

// CoerceObject reads raw as a JSON object, unwrapping a double-encoded
// object once.
func CoerceObject(raw string) (map[string]any, bool, error) {
	v := unwrapEncoded(Coerce(raw))
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case map[string]any:
		return x, true, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, false, nil
		}
	}
	return nil, false, fmt.Errorf("%w: expected object, got %s", ErrUnparseable, kindOf(v))
}

// unwrapEncoded decodes a string value one more time when it holds JSON
// structure.
func unwrapEncoded(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "[") && !strings.HasPrefix(t, "{") {
		return v
	}
	inner, err := decodeJSON(t)
	if err != nil {
		return v
	}
	return inner
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "text"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
