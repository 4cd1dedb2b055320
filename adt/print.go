package adt

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// String renders v as Tag( f0, f1 ) for variants and Tag( x=0, y=1 ) for
// records, in declared field order. Nested values render recursively and
// strings are quoted.
func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v *Value) write(sb *strings.Builder) {
	sb.WriteString(v.shape.tag)
	if len(v.fields) == 0 {
		sb.WriteString("()")
		return
	}
	sb.WriteString("( ")
	for i, f := range v.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if v.shape.kind == KindRecord {
			sb.WriteString(v.shape.names[i])
			sb.WriteByte('=')
		}
		writeRepr(sb, f)
	}
	sb.WriteString(" )")
}

// repr renders a field value for printing and diagnostics.
func repr(x any) string {
	var sb strings.Builder
	writeRepr(&sb, x)
	return sb.String()
}

func writeRepr(sb *strings.Builder, x any) {
	switch val := x.(type) {
	case nil:
		sb.WriteString("nil")
		return
	case *Value:
		if val == nil {
			sb.WriteString("nil")
			return
		}
		val.write(sb)
		return
	case string:
		sb.WriteString(strconv.Quote(val))
		return
	case []byte:
		fmt.Fprintf(sb, "%q", val)
		return
	case fmt.Stringer:
		sb.WriteString(val.String())
		return
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, rv.Index(i).Interface())
		}
		sb.WriteByte(']')

	case reflect.Map:
		entries := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, repr(iter.Key().Interface())+": "+repr(iter.Value().Interface()))
		}
		sort.Strings(entries)
		sb.WriteByte('{')
		sb.WriteString(strings.Join(entries, ", "))
		sb.WriteByte('}')

	default:
		fmt.Fprintf(sb, "%v", x)
	}
}
