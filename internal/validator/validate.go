package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

type match struct {
	path    string
	value   any
	present bool
}

// Validate checks payload against rules. On success it returns the validated
// payload: a deep copy holding only the top-level keys some rule addresses,
// or the whole payload when rules is empty.
// On failure it returns *apperr.PayloadValidationError keyed by concrete path.
func Validate(payload map[string]any, rules Rules) (map[string]any, error) {
	if len(rules) == 0 {
		out, _ := clone(payload).(map[string]any)
		return out, nil
	}

	errs := map[string][]string{}
	for _, f := range rules {
		for _, m := range resolve(payload, f.Path) {
			if msg := check(f, m); msg != "" {
				errs[m.path] = append(errs[m.path], msg)
			}
		}
	}
	if len(errs) > 0 {
		return nil, apperr.NewPayloadValidationError(errs)
	}

	out := make(map[string]any)
	for root := range rules.roots() {
		if v, ok := payload[root]; ok {
			out[root] = clone(v)
		}
	}
	return out, nil
}

// resolve expands path against payload. Wildcards over a missing or non-list
// node produce no matches; a missing named segment produces one absent match.
func resolve(payload map[string]any, path string) []match {
	var out []match
	walk(payload, true, strings.Split(path, "."), "", &out)
	return out
}

func walk(node any, present bool, segs []string, prefix string, out *[]match) {
	if len(segs) == 0 {
		*out = append(*out, match{path: prefix, value: node, present: present})
		return
	}
	seg, rest := segs[0], segs[1:]

	if seg == "*" {
		items, ok := asList(node)
		if !ok {
			return
		}
		for i, item := range items {
			walk(item, true, rest, join(prefix, strconv.Itoa(i)), out)
		}
		return
	}

	m, ok := node.(map[string]any)
	if !ok || !present {
		if slices.Contains(rest, "*") {
			return
		}
		*out = append(*out, match{path: join(prefix, strings.Join(segs, "."))})
		return
	}
	v, found := m[seg]
	walk(v, found, rest, join(prefix, seg), out)
}

func join(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}

func check(f Field, m match) string {
	if !m.present || m.value == nil || isEmpty(m.value) {
		if f.Required {
			return fmt.Sprintf("The %s field is required.", m.path)
		}
		if m.present && m.value == nil && !f.Nullable {
			return fmt.Sprintf("The %s field must not be null.", m.path)
		}
		return ""
	}

	if msg := checkKind(f.Kind, m); msg != "" {
		return msg
	}
	if msg := checkBounds(f, m); msg != "" {
		return msg
	}
	if f.Pattern != nil {
		s, ok := scalarString(m.value)
		if !ok || !f.Pattern.MatchString(s) {
			return fmt.Sprintf("The %s field format is invalid.", m.path)
		}
	}
	if len(f.OneOf) > 0 {
		s, ok := scalarString(m.value)
		if !ok || !slices.Contains(f.OneOf, s) {
			return fmt.Sprintf("The selected %s is invalid.", m.path)
		}
	}
	return ""
}

func checkKind(k Kind, m match) string {
	v := m.value
	switch k {
	case String:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("The %s field must be a string.", m.path)
		}
	case Numeric:
		if _, ok := toFloat(v); !ok {
			return fmt.Sprintf("The %s field must be a number.", m.path)
		}
	case Integer:
		if !isInteger(v) {
			return fmt.Sprintf("The %s field must be an integer.", m.path)
		}
	case Boolean:
		if !isBool(v) {
			return fmt.Sprintf("The %s field must be true or false.", m.path)
		}
	case List:
		if _, ok := asList(v); !ok {
			return fmt.Sprintf("The %s field must be an array.", m.path)
		}
	case Object:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Sprintf("The %s field must be an object.", m.path)
		}
	case Date:
		s, ok := v.(string)
		if !ok || !IsValidDate(s) {
			return fmt.Sprintf("The %s field must match the format Y-m-d.", m.path)
		}
	case URL:
		s, ok := v.(string)
		if !ok || !isURL(s) {
			return fmt.Sprintf("The %s field must be a valid URL.", m.path)
		}
	}
	return ""
}

func checkBounds(f Field, m match) string {
	if f.Min == nil && f.Max == nil {
		return ""
	}

	var size float64
	var unit string
	switch f.Kind {
	case Numeric, Integer:
		n, _ := toFloat(m.value)
		size = n
	case List:
		items, _ := asList(m.value)
		size, unit = float64(len(items)), "items"
	default:
		s, ok := scalarString(m.value)
		if !ok {
			return ""
		}
		size, unit = float64(len([]rune(s))), "characters"
	}

	if f.Min != nil && size < *f.Min {
		return boundMessage(m.path, "must be at least", *f.Min, unit)
	}
	if f.Max != nil && size > *f.Max {
		return boundMessage(m.path, "must not be greater than", *f.Max, unit)
	}
	return ""
}

func boundMessage(path, verb string, n float64, unit string) string {
	num := strconv.FormatFloat(n, 'f', -1, 64)
	if unit == "" {
		return fmt.Sprintf("The %s field %s %s.", path, verb, num)
	}
	return fmt.Sprintf("The %s field %s %s %s.", path, verb, num, unit)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	}
	if items, ok := asList(v); ok {
		return len(items) == 0
	}
	return false
}

func asList(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	}
	return 0, false
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int32, int64, uint, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case json.Number:
		_, err := n.Int64()
		return err == nil
	case decimal.Decimal:
		return n.IsInteger()
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return err == nil
	}
	return false
}

func isBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return true
	case int:
		return t == 0 || t == 1
	case float64:
		return t == 0 || t == 1
	case string:
		switch t {
		case "0", "1", "true", "false":
			return true
		}
	}
	return false
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case decimal.Decimal:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = clone(val)
		}
		return out
	}
	return v
}
