package interp

import (
	"strconv"
	"strings"

	"github.com/asteria-lang/asteria/value"
)

// DisplayString renders v the way an uncaught exception or a `print`-like
// native binding would show it to a human (§6.7): strings are shown raw
// (not quoted), everything else renders the way the script would write it
// as a literal. Arrays/objects recurse with quoting, since a nested string
// needs its boundaries marked.
func DisplayString(v value.Value) string {
	if v.Kind() == value.String {
		return v.AsString()
	}
	return displayQuoted(v)
}

func displayQuoted(v value.Value) string {
	switch v.Kind() {
	case value.Null:
		return "null"
	case value.Boolean:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case value.Integer:
		return strconv.FormatInt(v.AsInt(), 10)
	case value.Real:
		return strconv.FormatFloat(v.AsReal(), 'g', -1, 64)
	case value.String:
		return strconv.Quote(v.AsString())
	case value.Opaque:
		return "<opaque>"
	case value.Function:
		return "<function>"
	case value.Array:
		items := v.AsArray().Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = displayQuoted(it)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case value.Object:
		obj := v.AsObject()
		keys := obj.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ":" + displayQuoted(obj.Get(k))
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "<unknown>"
	}
}
