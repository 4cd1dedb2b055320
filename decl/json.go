package decl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Neumenon/adt/adt"
)

// ============================================================
// JSON -> Value
// ============================================================
//
// A value is written as a single-key object naming its constructor:
//
//	{"Circle": [5, {"Point": {"x": 0, "y": 0}}]}
//
// Variant payloads are arrays (null for no fields), record payloads are
// objects. Any single-key object whose key is a declared tag is built as
// that constructor, wherever it appears. Numbers written as integers
// become int64, others float64. Pre-decoded float64 input follows the
// same rule by value: integral floats in the exact range become int64.

// maxSafeInt is the largest integer a float64 holds exactly.
const maxSafeInt = 1<<53 - 1

// Decode builds a validated value from a JSON document.
func (s *Set) Decode(data []byte) (*adt.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decl: parse JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decl: parse JSON: trailing data after value")
	}

	v, err := s.DecodeValue(raw)
	if err != nil {
		return nil, err
	}
	s.log.Debug("decoded value", zap.String("tag", v.Tag()))
	return v, nil
}

// DecodeValue builds a validated value from decoded JSON, as produced by
// encoding/json with or without UseNumber.
func (s *Set) DecodeValue(raw any) (*adt.Value, error) {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) != 1 {
		return nil, &DecodeError{Path: "$", Err: fmt.Errorf("expected a single-key object naming a constructor")}
	}
	var (
		tag     string
		payload any
	)
	for k, v := range obj {
		tag, payload = k, v
	}
	if _, declared := s.entries[tag]; !declared {
		return nil, &DecodeError{Path: "$", Err: &NotDeclaredError{Kind: "type", Name: tag}}
	}
	return s.build(tag, payload, "$."+tag)
}

func (s *Set) build(tag string, payload any, path string) (*adt.Value, error) {
	switch c := s.entries[tag].ctor.(type) {
	case *adt.Variant:
		var items []any
		switch p := payload.(type) {
		case nil:
		case []any:
			items = make([]any, len(p))
			for i, elem := range p {
				v, err := s.fromJSON(elem, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return nil, err
				}
				items[i] = v
			}
		default:
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("variant payload must be an array, got %s", jsonKind(payload))}
		}
		v, err := c.New(items...)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return v, nil

	case *adt.Record:
		p, ok := payload.(map[string]any)
		if !ok {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("record payload must be an object, got %s", jsonKind(payload))}
		}
		vals := make(map[string]any, len(p))
		for name, elem := range p {
			v, err := s.fromJSON(elem, path+"."+name)
			if err != nil {
				return nil, err
			}
			vals[name] = v
		}
		v, err := c.New(vals)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return v, nil

	default:
		return nil, &DecodeError{Path: path, Err: adt.ErrInvariant}
	}
}

func (s *Set) fromJSON(x any, path string) (any, error) {
	switch val := x.(type) {
	case nil, bool, string:
		return val, nil

	case json.Number:
		return number(val, path)

	case float64:
		return normalizeFloat(val, path)

	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			v, err := s.fromJSON(elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case map[string]any:
		if len(val) == 1 {
			for tag, payload := range val {
				if _, declared := s.entries[tag]; declared {
					return s.build(tag, payload, path+"."+tag)
				}
			}
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			v, err := s.fromJSON(elem, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	default:
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported JSON type %T", x)}
	}
}

func number(n json.Number, path string) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("invalid number %s", n)}
	}
	return f, nil
}

func normalizeFloat(f float64, path string) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("non-finite number")}
	}
	if f == math.Trunc(f) && f >= -maxSafeInt && f <= maxSafeInt {
		return int64(f), nil
	}
	return f, nil
}

func jsonKind(x any) string {
	switch x.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", x)
	}
}

// ============================================================
// Value -> JSON
// ============================================================

// Encode renders v in the form Decode accepts. Record fields are written
// in declared order.
func (s *Set) Encode(v *adt.Value) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("decl: encode nil value")
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, fmt.Errorf("decl: encode %s: %w", v.Tag(), err)
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, x any) error {
	switch val := x.(type) {
	case *adt.Value:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		writeKey(buf, val.Tag())
		fields := val.Fields()
		if val.Kind() == adt.KindRecord {
			buf.WriteByte('{')
			for i, name := range val.Names() {
				if i > 0 {
					buf.WriteByte(',')
				}
				writeKey(buf, name)
				if err := writeJSON(buf, fields[i]); err != nil {
					return err
				}
			}
			buf.WriteByte('}')
		} else {
			if err := writeArray(buf, fields); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		return writeArray(buf, val)

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("non-finite number %v", val)
		}
		// Keep a fraction so the number decodes back as a float.
		out := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(out, ".eE") {
			out += ".0"
		}
		buf.WriteString(out)
		return nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeKey(buf, k)
			if err := writeJSON(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	default:
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
}

func writeArray(buf *bytes.Buffer, items []any) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeKey(buf *bytes.Buffer, k string) {
	data, _ := json.Marshal(k)
	buf.Write(data)
	buf.WriteByte(':')
}
