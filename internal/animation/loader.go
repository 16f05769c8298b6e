package animation

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Animations []catalogAnimation `yaml:"animations"`
}

type catalogAnimation struct {
	Name        string         `yaml:"name"`
	Category    string         `yaml:"category"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version"`
	JSInit      string         `yaml:"js_init"`
	Parameters  []catalogParam `yaml:"parameters"`
	CSSTemplate blockText      `yaml:"css_template"`
}

// blockText is emitted as a literal block. Text starting with whitespace
// is double quoted instead: yaml.v3 writes an indentation indicator for it
// that its own parser rejects.
type blockText string

func (b blockText) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(b), Style: yaml.LiteralStyle}
	if strings.TrimLeft(string(b), " \t\r\n") != string(b) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n, nil
}

type catalogParam struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Default     any    `yaml:"default"`
	Min         *int   `yaml:"min"`
	Max         *int   `yaml:"max"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// LoadFile reads a YAML animation catalog.
//
//	animations:
//	  - name: glow
//	    category: visual
//	    parameters:
//	      - {name: speed, type: int, default: 100, min: 10, max: 1000}
//	    css_template: |
//	      .shogun-glow-{{id}} { animation-duration: {{speed}}ms; }
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read animations file %s", path)
	}
	defs, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse animations file %s", path)
	}
	return defs, nil
}

// ParseCatalog decodes catalog YAML into definitions.
func ParseCatalog(data []byte) ([]Definition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	defs := make([]Definition, 0, len(file.Animations))
	for i, a := range file.Animations {
		if a.Name == "" {
			return nil, errors.Errorf("animation %d: name is required", i)
		}
		def := Definition{
			Name:        a.Name,
			Category:    Category(a.Category),
			Description: a.Description,
			Version:     a.Version,
			JSInit:      a.JSInit,
			CSSTemplate: string(a.CSSTemplate),
		}
		for _, p := range a.Parameters {
			spec, err := p.toSpec()
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q", a.Name)
			}
			def.Parameters = append(def.Parameters, spec)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// MarshalCatalog encodes definitions in the format ParseCatalog reads.
func MarshalCatalog(defs []Definition) ([]byte, error) {
	file := catalogFile{Animations: make([]catalogAnimation, 0, len(defs))}
	for _, d := range defs {
		a := catalogAnimation{
			Name:        d.Name,
			Category:    string(d.Category),
			Description: d.Description,
			Version:     d.Version,
			JSInit:      d.JSInit,
			CSSTemplate: blockText(d.CSSTemplate),
		}
		for _, p := range d.Parameters {
			cp := catalogParam{
				Name:        p.Name,
				Type:        string(p.Type),
				Min:         p.Min,
				Max:         p.Max,
				Label:       p.Label,
				Description: p.Description,
			}
			if p.Default != nil {
				cp.Default = p.Default.Native()
			}
			a.Parameters = append(a.Parameters, cp)
		}
		file.Animations = append(file.Animations, a)
	}
	out, err := yaml.Marshal(file)
	if err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return out, nil
}

func (p catalogParam) toSpec() (ParameterSpec, error) {
	if p.Name == "" {
		return ParameterSpec{}, errors.New("parameter name is required")
	}
	t := ParamType(p.Type)
	if !t.Valid() {
		return ParameterSpec{}, errors.Errorf("parameter %q: unknown type %q", p.Name, p.Type)
	}
	if (p.Min != nil || p.Max != nil) && t != TypeInt {
		return ParameterSpec{}, errors.Errorf("parameter %q: min/max only apply to int", p.Name)
	}
	def, err := DefaultValue(t, p.Default)
	if err != nil {
		return ParameterSpec{}, errors.Wrapf(err, "parameter %q", p.Name)
	}
	return ParameterSpec{
		Name:        p.Name,
		Type:        t,
		Default:     def,
		Min:         p.Min,
		Max:         p.Max,
		Label:       p.Label,
		Description: p.Description,
	}, nil
}

// LoadInto reads path and registers every definition in it, overwriting
// built-ins of the same name. It returns the number registered.
func LoadInto(reg *Registry, path string) (int, error) {
	defs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	for _, def := range defs {
		reg.Register(def)
	}
	return len(defs), nil
}
