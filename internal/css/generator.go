package css

import (
	"sync"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/metrics"
	"github.com/hpungsan/shogun/internal/template"
)

// Meta parameters injected next to the declared ones.
const (
	ParamID            = "id"
	ParamAnimationName = "animation_name"
	ParamTextLength    = "text_length"
)

// Result is one compiled animation.
type Result struct {
	Animation string
	UniqueID  string
	Selector  string
	// Params are the resolved parameters the id was derived from.
	Params animation.Params
	CSS    string
	JSInit string
}

// Generator compiles animation templates into scoped, minified CSS.
// It is safe for concurrent use.
type Generator struct {
	registry *animation.Registry
	metrics  *metrics.Metrics
	logger   log.Logger

	mu     sync.Mutex
	parsed map[string]*template.Template // by template source
}

// NewGenerator returns a generator over registry. m and logger may be nil.
func NewGenerator(registry *animation.Registry, m *metrics.Metrics, logger log.Logger) *Generator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Generator{
		registry: registry,
		metrics:  m,
		logger:   logger,
		parsed:   make(map[string]*template.Template),
	}
}

// Registry returns the registry the generator compiles from.
func (g *Generator) Registry() *animation.Registry {
	return g.registry
}

func (g *Generator) parse(src string) *template.Template {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.parsed[src]; ok {
		return t
	}
	t := template.Parse(src)
	g.parsed[src] = t
	return t
}

// Resolve sanitizes raw against the named definition. When the template
// sizes itself by text, text_length (the rune count of raw["text"], or of
// the default text) is added to the returned parameters, so it takes part
// in ids and cache keys.
func (g *Generator) Resolve(name string, raw map[string]any) (*animation.Definition, animation.Params, bool) {
	def, ok := g.registry.Get(name)
	if !ok {
		return nil, nil, false
	}
	params := animation.Resolve(def, raw)
	if g.parse(def.CSSTemplate).Uses(ParamTextLength) {
		text, ok := animation.TextOf(raw)
		if !ok {
			text = animation.DefaultText
		}
		params = params.With(ParamTextLength, animation.IntValue(utf8.RuneCountInString(text)))
	}
	return def, params, true
}

// Compile resolves raw and compiles the named animation. An empty uniqueID
// is replaced by StableID. It reports false for an unknown animation.
func (g *Generator) Compile(name string, raw map[string]any, uniqueID string) (*Result, bool) {
	def, params, ok := g.Resolve(name, raw)
	if !ok {
		g.observe("unknown", "not_found")
		level.Debug(g.logger).Log("msg", "unknown animation", "animation", name)
		return nil, false
	}
	if uniqueID == "" {
		uniqueID = StableID(name, params)
	}
	return g.compile(def, params, uniqueID), true
}

// CompileParams compiles already resolved parameters, as returned by Resolve.
func (g *Generator) CompileParams(def *animation.Definition, params animation.Params, uniqueID string) *Result {
	if uniqueID == "" {
		uniqueID = StableID(def.Name, params)
	}
	return g.compile(def, params, uniqueID)
}

func (g *Generator) compile(def *animation.Definition, params animation.Params, uniqueID string) *Result {
	vars := params.Vars()
	vars[ParamID] = uniqueID
	vars[ParamAnimationName] = def.Name

	css := Minify(g.parse(def.CSSTemplate).Execute(vars, nil))
	if css == "" {
		g.observe(def.Name, "empty")
	} else {
		g.observe(def.Name, "ok")
	}
	return &Result{
		Animation: def.Name,
		UniqueID:  uniqueID,
		Selector:  Selector(def.Name, uniqueID),
		Params:    params,
		CSS:       css,
		JSInit:    def.JSInit,
	}
}

// Generate returns the CSS for the named animation, or "" when it is not
// registered.
func (g *Generator) Generate(name string, raw map[string]any, uniqueID string) string {
	res, ok := g.Compile(name, raw, uniqueID)
	if !ok {
		return ""
	}
	return res.CSS
}

func (g *Generator) observe(name, result string) {
	if g.metrics == nil {
		return
	}
	g.metrics.Compilations.WithLabelValues(name, result).Inc()
}
