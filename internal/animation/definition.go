package animation

import (
	"encoding/json"
	"fmt"
)

// Category groups animations for listing.
type Category string

const (
	CategoryText        Category = "text"
	CategoryVisual      Category = "visual"
	CategoryInteractive Category = "interactive"
	CategoryAdvanced    Category = "advanced"
)

// DefaultVersion is assigned to definitions registered without a version.
const DefaultVersion = "1.0.0"

// categoryLabels holds display names, in listing order.
var categoryLabels = []struct {
	Category Category
	Label    string
}{
	{CategoryText, "Text Effects"},
	{CategoryVisual, "Visual Effects"},
	{CategoryInteractive, "Interactive Effects"},
	{CategoryAdvanced, "Advanced Effects"},
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, cl := range categoryLabels {
		if cl.Category == c {
			return true
		}
	}
	return false
}

// Categories returns category → display label.
func Categories() map[Category]string {
	out := make(map[Category]string, len(categoryLabels))
	for _, cl := range categoryLabels {
		out[cl.Category] = cl.Label
	}
	return out
}

// Definition is a registered animation: parameter schema plus CSS template.
type Definition struct {
	Name        string
	Category    Category
	Description string
	Version     string
	// JSInit names the client initializer for elements using this animation.
	JSInit      string
	Parameters  []ParameterSpec
	CSSTemplate string
}

// Param returns the spec for the named parameter.
func (d *Definition) Param(name string) (ParameterSpec, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}

// Defaults returns the parameter set an empty request resolves to.
func (d *Definition) Defaults() Params {
	return Resolve(d, nil)
}

// ParameterSpec describes one tunable value of an animation.
type ParameterSpec struct {
	Name        string
	Type        ParamType
	Default     Value
	Min         *int
	Max         *int
	Label       string
	Description string
}

// MarshalJSON renders the spec in the shape the HTTP API lists it.
func (p ParameterSpec) MarshalJSON() ([]byte, error) {
	out := struct {
		Type        ParamType `json:"type"`
		Default     any       `json:"default"`
		Min         *int      `json:"min,omitempty"`
		Max         *int      `json:"max,omitempty"`
		Label       string    `json:"label,omitempty"`
		Description string    `json:"description,omitempty"`
	}{
		Type:        p.Type,
		Min:         p.Min,
		Max:         p.Max,
		Label:       p.Label,
		Description: p.Description,
	}
	if p.Default != nil {
		out.Default = p.Default.Native()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the listing shape back into a spec, building the
// default from the declared type. The name is not part of that shape; it
// is the key the spec is listed under.
func (p *ParameterSpec) UnmarshalJSON(data []byte) error {
	var in struct {
		Type        ParamType `json:"type"`
		Default     any       `json:"default"`
		Min         *int      `json:"min"`
		Max         *int      `json:"max"`
		Label       string    `json:"label"`
		Description string    `json:"description"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown parameter type %q", in.Type)
	}
	def, err := DefaultValue(in.Type, in.Default)
	if err != nil {
		return err
	}
	*p = ParameterSpec{
		Name:        p.Name,
		Type:        in.Type,
		Default:     def,
		Min:         in.Min,
		Max:         in.Max,
		Label:       in.Label,
		Description: in.Description,
	}
	return nil
}

// IntParam declares an int parameter clamped to [min, max].
func IntParam(name string, def, min, max int, label, description string) ParameterSpec {
	return ParameterSpec{
		Name:        name,
		Type:        TypeInt,
		Default:     IntValue(def),
		Min:         &min,
		Max:         &max,
		Label:       label,
		Description: description,
	}
}

// StringParam declares a free-text parameter.
func StringParam(name, def, label, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: TypeString, Default: StringValue(def), Label: label, Description: description}
}

// ColorParam declares a hex color parameter.
func ColorParam(name, def, label, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: TypeColor, Default: ColorValue(def), Label: label, Description: description}
}

// SizeParam declares a CSS length parameter.
func SizeParam(name, def, label, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: TypeSize, Default: SizeValue(def), Label: label, Description: description}
}

// BoolParam declares a flag parameter.
func BoolParam(name string, def bool, label, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: TypeBoolean, Default: BoolValue(def), Label: label, Description: description}
}

// DefaultValue builds the Value of type t from a loosely typed default,
// as found in a YAML catalog.
func DefaultValue(t ParamType, raw any) (Value, error) {
	switch t {
	case TypeInt:
		n, ok := coerceInt(raw)
		if !ok {
			return nil, fmt.Errorf("default %v is not an integer", raw)
		}
		return IntValue(n), nil
	case TypeString:
		return StringValue(coerceString(raw)), nil
	case TypeColor:
		return ColorValue(coerceString(raw)), nil
	case TypeSize:
		return SizeValue(coerceString(raw)), nil
	case TypeBoolean:
		return BoolValue(ParseBool(raw)), nil
	}
	return nil, fmt.Errorf("unknown parameter type %q", t)
}
