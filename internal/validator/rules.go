// Package validator checks outgoing and inbound payloads against per-field
// rules addressed by dot paths. A "*" segment expands over list elements, so
// "products.*.count" checks the count of every product.
package validator

import (
	"regexp"
	"strings"
)

// Kind is the value type a field must have.
type Kind int

const (
	Any Kind = iota
	String
	Numeric
	Integer
	Boolean
	List
	Object
	Date
	URL
)

// Field is one rule. Build it with F and the chained setters.
type Field struct {
	Path     string
	Required bool
	Nullable bool
	Kind     Kind
	Min      *float64
	Max      *float64
	Pattern  *regexp.Regexp
	OneOf    []string
}

// Rules is an ordered rule set; errors are reported in rule order per path.
type Rules []Field

// F starts a rule for path.
func F(path string) Field { return Field{Path: path} }

func (f Field) Require() Field {
	f.Required = true
	return f
}

func (f Field) Null() Field {
	f.Nullable = true
	return f
}

func (f Field) Str() Field {
	f.Kind = String
	return f
}

func (f Field) Num() Field {
	f.Kind = Numeric
	return f
}

func (f Field) Int() Field {
	f.Kind = Integer
	return f
}

func (f Field) Bool() Field {
	f.Kind = Boolean
	return f
}

func (f Field) Array() Field {
	f.Kind = List
	return f
}

func (f Field) Obj() Field {
	f.Kind = Object
	return f
}

func (f Field) DateYMD() Field {
	f.Kind = Date
	return f
}

func (f Field) Link() Field {
	f.Kind = URL
	return f
}

func (f Field) AtLeast(n float64) Field {
	f.Min = &n
	return f
}

func (f Field) AtMost(n float64) Field {
	f.Max = &n
	return f
}

func (f Field) Between(min, max float64) Field {
	return f.AtLeast(min).AtMost(max)
}

func (f Field) Match(re *regexp.Regexp) Field {
	f.Pattern = re
	return f
}

func (f Field) In(values ...string) Field {
	f.OneOf = append([]string(nil), values...)
	return f
}

// roots returns the distinct top-level keys addressed by the rules.
func (r Rules) roots() map[string]struct{} {
	out := make(map[string]struct{}, len(r))
	for _, f := range r {
		root, _, _ := strings.Cut(f.Path, ".")
		out[root] = struct{}{}
	}
	return out
}
