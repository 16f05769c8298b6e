package animation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	RegisterDefaults(reg)
	return reg
}

func TestRegisterDefaults(t *testing.T) {
	reg := defaultRegistry(t)

	names := []string{}
	for _, def := range reg.List() {
		names = append(names, def.Name)
	}
	require.Equal(t, []string{"bounce", "fade", "handwritten", "neon", "slide", "typewriter"}, names)

	neon, ok := reg.Get("neon")
	require.True(t, ok)
	assert.Equal(t, CategoryVisual, neon.Category)
	assert.Equal(t, DefaultVersion, neon.Version)
	assert.Equal(t, "ShogunAPI.initNeon", neon.JSInit)

	_, ok = reg.Get("sparkle")
	assert.False(t, ok)

	for _, name := range []string{"fade", "slide", "bounce"} {
		def, ok := reg.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, CategoryInteractive, def.Category)
		assert.Equal(t, "ShogunAPI.initAnimatedText", def.JSInit)
		assert.Contains(t, def.CSSTemplate, ".shogun-"+name+"-{{id}}.shogun-animation-"+name+" .animated-text")
		defaults := def.Defaults()
		assert.Equal(t, IntValue(1000), defaults["speed"])
		assert.Equal(t, BoolValue(false), defaults["loop"])
	}
	slide, _ := reg.Get("slide")
	_, ok = slide.Param("distance")
	assert.True(t, ok)
}

func TestRegistry_OverwriteAndDefaults(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Definition{Name: "x", Category: "bogus", CSSTemplate: "a"})
	reg.Register(Definition{Name: "x", Category: CategoryAdvanced, Version: "2.0.0", CSSTemplate: "b"})

	def, ok := reg.Get("x")
	require.True(t, ok)
	assert.Equal(t, "b", def.CSSTemplate)
	assert.Equal(t, CategoryAdvanced, def.Category)
	assert.Equal(t, "2.0.0", def.Version)
	assert.Equal(t, 1, reg.Len())

	reg.Register(Definition{Name: "y", Category: "bogus"})
	y, _ := reg.Get("y")
	assert.Equal(t, CategoryText, y.Category)
	assert.Equal(t, DefaultVersion, y.Version)
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	reg := defaultRegistry(t)
	def, _ := reg.Get("typewriter")
	def.CSSTemplate = "mutated"
	def.Parameters[0].Name = "mutated"

	again, _ := reg.Get("typewriter")
	assert.NotEqual(t, "mutated", again.CSSTemplate)
	assert.Equal(t, "speed", again.Parameters[0].Name)
}

func TestRegistry_ByCategory(t *testing.T) {
	reg := defaultRegistry(t)

	text := reg.ByCategory(CategoryText)
	require.Len(t, text, 2)
	assert.Equal(t, "handwritten", text[0].Name)
	assert.Equal(t, "typewriter", text[1].Name)

	assert.Len(t, reg.ByCategory(CategoryVisual), 1)
	assert.Empty(t, reg.ByCategory(CategoryInteractive))
	assert.Equal(t, "Visual Effects", Categories()[CategoryVisual])
}

func TestResolve_ClampsInts(t *testing.T) {
	reg := defaultRegistry(t)
	def, _ := reg.Get("typewriter")

	tests := []struct {
		name string
		raw  any
		want IntValue
	}{
		{"below min", 5, 10},
		{"above max", 5000, 1000},
		{"non-numeric string", "abc", 100},
		{"numeric string", "250", 250},
		{"leading digits", "120px", 120},
		{"float", 42.9, 42},
		{"json number", json.Number("300"), 300},
		{"huge", "99999999999999999999", 1000},
		{"negative", "-7", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(def, map[string]any{"speed": tt.raw})
			assert.Equal(t, tt.want, p["speed"])
		})
	}
}

func TestResolve_Types(t *testing.T) {
	reg := defaultRegistry(t)
	def, _ := reg.Get("typewriter")

	p := Resolve(def, map[string]any{
		"cursor":      "<b>_</b>",
		"color":       "red",
		"font_size":   "1.5rem",
		"font_family": "Georgia; } body { display:none",
		"unknown":     "dropped",
	})

	assert.Equal(t, StringValue("_"), p["cursor"])
	assert.Equal(t, ColorValue("inherit"), p["color"], "non-hex color falls back to default")
	assert.Equal(t, SizeValue("1.5rem"), p["font_size"])
	assert.NotContains(t, p["font_family"].String(), "}")
	assert.NotContains(t, p["font_family"].String(), ";")
	_, ok := p["unknown"]
	assert.False(t, ok)
	assert.Len(t, p, len(def.Parameters))
}

func TestResolve_ColorAndSize(t *testing.T) {
	reg := defaultRegistry(t)
	def, _ := reg.Get("neon")

	p := Resolve(def, map[string]any{"glow_color": "#F0f", "text_color": "#12345"})
	assert.Equal(t, ColorValue("#F0f"), p["glow_color"])
	assert.Equal(t, ColorValue("#ffffff"), p["text_color"])

	tw, _ := reg.Get("typewriter")
	p = Resolve(tw, map[string]any{"font_size": "12pt"})
	assert.Equal(t, SizeValue("inherit"), p["font_size"])
}

func TestResolve_MissingAndNil(t *testing.T) {
	reg := defaultRegistry(t)
	def, _ := reg.Get("handwritten")

	p := Resolve(def, map[string]any{"speed": nil})
	assert.Equal(t, IntValue(150), p["speed"])
	assert.Equal(t, BoolValue(true), p["wobble"])

	for name, v := range def.Defaults() {
		assert.NotNil(t, v, name)
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []any{"1", "true", "YES", " on ", true, 1, 2.5, json.Number("3")} {
		assert.True(t, ParseBool(in), "%v", in)
	}
	for _, in := range []any{"0", "false", "no", "", "maybe", false, 0, 0.0, nil} {
		assert.False(t, ParseBool(in), "%v", in)
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  <b>hello</b> \t\n world "))
	assert.Equal(t, "ab", SanitizeText("a\x00b"))
	assert.Equal(t, "a b", SanitizeText("a{;}\"\\<> b"))
	assert.Equal(t, `say "hi"`, CleanText(`say   "hi"`))
}

func TestTextOf(t *testing.T) {
	text, ok := TextOf(map[string]any{"text": "  Hello <em>there</em> "})
	assert.True(t, ok)
	assert.Equal(t, "Hello there", text)

	_, ok = TextOf(map[string]any{})
	assert.False(t, ok)
}

func TestCanonical_OrderIndependent(t *testing.T) {
	a := Params{}
	a["speed"] = IntValue(100)
	a["cursor"] = StringValue("|")
	a["flicker"] = BoolValue(false)

	b := Params{}
	b["flicker"] = BoolValue(false)
	b["cursor"] = StringValue("|")
	b["speed"] = IntValue(100)

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, `cursor=string:"|";flicker=boolean:false;speed=int:"100";`, a.Canonical())

	// Type is part of the encoding.
	c := Params{"speed": StringValue("100"), "cursor": StringValue("|"), "flicker": BoolValue(false)}
	assert.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestParams_With(t *testing.T) {
	p := Params{"a": IntValue(1)}
	q := p.With("b", StringValue("x"))

	assert.Len(t, p, 1)
	assert.Len(t, q, 2)
	assert.Equal(t, map[string]string{"a": "1", "b": "x"}, q.Vars())
	assert.Equal(t, map[string]any{"a": 1, "b": "x"}, q.Native())
}

func TestParameterSpec_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(IntParam("speed", 100, 10, 1000, "Speed", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"int","default":100,"min":10,"max":1000,"label":"Speed"}`, string(data))

	data, err = json.Marshal(BoolParam("flicker", false, "", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"boolean","default":false}`, string(data))
}

func TestParseCatalog(t *testing.T) {
	src := []byte(`
animations:
  - name: glow
    category: visual
    description: Soft glow
    js_init: ShogunAPI.initGlow
    parameters:
      - {name: speed, type: int, default: 100, min: 10, max: 1000}
      - {name: color, type: color, default: "#ff00ff"}
      - {name: pulse, type: boolean, default: yes}
    css_template: |
      .shogun-glow-{{id}} { animation-duration: {{speed}}ms; }
`)
	defs, err := ParseCatalog(src)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "glow", def.Name)
	assert.Equal(t, CategoryVisual, def.Category)
	require.Len(t, def.Parameters, 3)
	assert.Equal(t, IntValue(100), def.Parameters[0].Default)
	assert.Equal(t, 1000, *def.Parameters[0].Max)
	assert.Equal(t, ColorValue("#ff00ff"), def.Parameters[1].Default)
	assert.Equal(t, BoolValue(true), def.Parameters[2].Default)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := map[string]string{
		"missing name":   "animations:\n  - category: text\n",
		"bad type":       "animations:\n  - name: a\n    parameters:\n      - {name: x, type: float}\n",
		"min on string":  "animations:\n  - name: a\n    parameters:\n      - {name: x, type: string, min: 1}\n",
		"int default":    "animations:\n  - name: a\n    parameters:\n      - {name: x, type: int, default: fast}\n",
		"invalid yaml":   "animations: [",
		"unnamed param":  "animations:\n  - name: a\n    parameters:\n      - {type: int, default: 1}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadInto_OverridesBuiltin(t *testing.T) {
	reg := defaultRegistry(t)
	path := filepath.Join(t.TempDir(), "animations.yaml")
	src := "animations:\n  - name: neon\n    category: advanced\n    css_template: \".n{}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	n, err := LoadInto(reg, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	neon, _ := reg.Get("neon")
	assert.Equal(t, CategoryAdvanced, neon.Category)
	assert.Equal(t, ".n{}", neon.CSSTemplate)

	_, err = LoadInto(reg, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalCatalog_RoundTrip(t *testing.T) {
	defs := defaultRegistry(t).List()

	data, err := MarshalCatalog(defs)
	require.NoError(t, err)

	back, err := ParseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, defs, back)
}

func TestMarshalCatalog_LeadingWhitespace(t *testing.T) {
	templates := []string{
		"\n.shogun-a-{{id}} {\n    color: red;\n}\n",
		"    .shogun-a-{{id}} { color: red; }",
		"\n\n  .shogun-a-{{id}} {}\n",
		".shogun-a-{{id}} {\n    color: red;   \n}",
	}
	for _, tmpl := range templates {
		defs := []Definition{{
			Name:        "a",
			Category:    CategoryText,
			Version:     DefaultVersion,
			Parameters:  []ParameterSpec{IntParam("speed", 100, 10, 1000, "", "")},
			CSSTemplate: tmpl,
		}}
		data, err := MarshalCatalog(defs)
		require.NoError(t, err)

		back, err := ParseCatalog(data)
		require.NoError(t, err, "yaml:\n%s", data)
		assert.Equal(t, tmpl, back[0].CSSTemplate)
	}
}

func TestParameterSpec_JSONRoundTrip(t *testing.T) {
	for _, def := range defaultRegistry(t).List() {
		for _, spec := range def.Parameters {
			data, err := json.Marshal(spec)
			require.NoError(t, err)

			var back ParameterSpec
			require.NoError(t, json.Unmarshal(data, &back), "%s.%s", def.Name, spec.Name)
			back.Name = spec.Name
			assert.Equal(t, spec, back)
		}
	}
}

func TestParameterSpec_UnmarshalJSON(t *testing.T) {
	var spec ParameterSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"int","default":20,"min":5,"max":50}`), &spec))
	assert.Equal(t, IntValue(20), spec.Default)
	assert.Equal(t, 50, *spec.Max)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"boolean","default":true}`), &spec))
	assert.Equal(t, BoolValue(true), spec.Default)
	assert.Nil(t, spec.Min)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"color","default":"#00ffff"}`), &spec))
	assert.Equal(t, ColorValue("#00ffff"), spec.Default)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"float","default":1.5}`), &spec))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"int","default":"abc"}`), &spec))
}
