package animation

import (
	"sort"
	"strconv"
	"strings"
)

// ParamType enumerates the parameter kinds an animation can declare.
type ParamType string

const (
	TypeInt     ParamType = "int"
	TypeString  ParamType = "string"
	TypeColor   ParamType = "color"
	TypeSize    ParamType = "size"
	TypeBoolean ParamType = "boolean"
)

// Valid reports whether t is a known parameter type.
func (t ParamType) Valid() bool {
	switch t {
	case TypeInt, TypeString, TypeColor, TypeSize, TypeBoolean:
		return true
	}
	return false
}

// Value is a resolved, concretely typed parameter value.
// Implementations: IntValue, StringValue, ColorValue, SizeValue, BoolValue.
type Value interface {
	Type() ParamType
	// String is the text substituted into templates.
	String() string
	// Truthy decides {{#if}} blocks.
	Truthy() bool
	// Native is the JSON-friendly form.
	Native() any
}

// IntValue is a clamped integer.
type IntValue int

func (v IntValue) Type() ParamType { return TypeInt }
func (v IntValue) String() string  { return strconv.Itoa(int(v)) }
func (v IntValue) Truthy() bool    { return v != 0 }
func (v IntValue) Native() any     { return int(v) }

// StringValue is sanitized free text.
type StringValue string

func (v StringValue) Type() ParamType { return TypeString }
func (v StringValue) String() string  { return string(v) }
func (v StringValue) Truthy() bool    { return v != "" && v != "0" }
func (v StringValue) Native() any     { return string(v) }

// ColorValue is a hex color, or the declared default (which may be a keyword like "inherit").
type ColorValue string

func (v ColorValue) Type() ParamType { return TypeColor }
func (v ColorValue) String() string  { return string(v) }
func (v ColorValue) Truthy() bool    { return v != "" }
func (v ColorValue) Native() any     { return string(v) }

// SizeValue is a CSS length such as "1.5rem", or the declared default.
type SizeValue string

func (v SizeValue) Type() ParamType { return TypeSize }
func (v SizeValue) String() string  { return string(v) }
func (v SizeValue) Truthy() bool    { return v != "" }
func (v SizeValue) Native() any     { return string(v) }

// BoolValue is a parsed flag. It renders as "1" or "" in templates.
type BoolValue bool

func (v BoolValue) Type() ParamType { return TypeBoolean }
func (v BoolValue) Truthy() bool    { return bool(v) }
func (v BoolValue) Native() any     { return bool(v) }
func (v BoolValue) String() string {
	if v {
		return "1"
	}
	return ""
}

// Params is a resolved parameter set keyed by parameter name.
type Params map[string]Value

// With returns a copy of p with name set to v.
func (p Params) With(name string, v Value) Params {
	out := make(Params, len(p)+1)
	for k, val := range p {
		out[k] = val
	}
	out[name] = v
	return out
}

// Vars flattens p into template variables.
func (p Params) Vars() map[string]string {
	vars := make(map[string]string, len(p))
	for k, v := range p {
		vars[k] = v.String()
	}
	return vars
}

// Native returns p as plain JSON-friendly values.
func (p Params) Native() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Native()
	}
	return out
}

// Canonical serializes p with keys in sorted order, so equal parameter sets
// serialize identically however they were built.
func (p Params) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := p[k]
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(string(v.Type()))
		b.WriteByte(':')
		if bv, ok := v.(BoolValue); ok {
			b.WriteString(strconv.FormatBool(bool(bv)))
		} else {
			b.WriteString(strconv.Quote(v.String()))
		}
		b.WriteByte(';')
	}
	return b.String()
}
