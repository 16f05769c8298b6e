package ops

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/css"
	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/markup"
)

// RenderInput is a declarative request for one animated element, as built
// from a shortcode or block.
type RenderInput struct {
	Animation  string
	Parameters map[string]any
	Text       string // default: animation.DefaultText
	ID         string // element id attribute
	UniqueID   string // pins the selector suffix
	Class      string
	UseCache   *bool // default: true
	// Fresh salts the unique id so repeated identical requests on one page
	// get distinct selectors. Fresh ids are never cached.
	Fresh bool
	// Container overrides the client container class (markup.ContainerSlogan
	// for slogans). Empty derives it from the animation.
	Container string
	// Style is a slogan or typewriter style class suffix.
	Style string
}

// clientSettings are the parameters the client controllers read back from
// data-* attributes.
var clientSettings = []string{
	"speed", "cursor", "loop", "delay", "delete_speed", "pause_end", "pause_start",
	"auto_start", "cursor_blink", "preserve_cursor", "direction",
}

var boolSettings = map[string]bool{"loop": true, "auto_start": true, "cursor_blink": true, "preserve_cursor": true}

// RenderOutput is a compiled animation with its markup.
type RenderOutput struct {
	UniqueID string `json:"unique_id"`
	Selector string `json:"selector"`
	CSS      string `json:"css"`
	HTML     string `json:"html"`
	CacheKey string `json:"cache_key"`
	Cached   bool   `json:"cached"`
	JSInit   string `json:"js_init"`
}

// Render compiles an animation and renders its element. For an unknown
// animation it returns ANIMATION_NOT_FOUND together with an output whose
// HTML is the inline error markup.
func Render(ctx context.Context, env *Env, input RenderInput) (*RenderOutput, error) {
	name := strings.TrimSpace(input.Animation)
	if name == "" {
		name = "typewriter"
	}
	text := animation.CleanText(input.Text)
	if text == "" {
		text = animation.DefaultText
	}
	raw := withText(input.Parameters, text)

	def, params, ok := env.Generator.Resolve(name, raw)
	if !ok {
		return &RenderOutput{HTML: markup.NotFound(name)}, errors.NewAnimationNotFound(name)
	}

	useCache := boolDefault(input.UseCache, true)
	uniqueID := sanitizeID(input.UniqueID)
	switch {
	case uniqueID != "":
	case input.Fresh:
		uniqueID = css.FreshID(name, params)
		useCache = false
	default:
		uniqueID = css.StableID(name, params)
	}
	key := cacheKey(name, params, uniqueID, "")

	compiled, cached, err := cachedCompile(ctx, env, key, useCache, func() (string, error) {
		return env.Generator.CompileParams(def, params, uniqueID).CSS, nil
	})
	if err != nil {
		return nil, err
	}

	return &RenderOutput{
		UniqueID: uniqueID,
		Selector: css.Selector(name, uniqueID),
		CSS:      compiled,
		HTML: markup.Render(markup.Element{
			Animation: name,
			UniqueID:  uniqueID,
			Text:      text,
			Class:     animation.SanitizeText(input.Class),
			ID:        animation.SanitizeText(input.ID),
			Cursor:    cursorOf(params),
			Container: input.Container,
			Style:     sanitizeID(input.Style),
			Settings:  settingsOf(params, input.Parameters),
		}),
		CacheKey: key,
		Cached:   cached,
		JSInit:   def.JSInit,
	}, nil
}

// settingsOf collects the client settings of a render. Resolved parameters
// win; settings the definition does not declare pass through sanitized.
func settingsOf(params animation.Params, raw map[string]any) map[string]string {
	out := map[string]string{}
	for _, k := range clientSettings {
		if v, ok := params[k]; ok {
			if boolSettings[k] {
				out[k] = strconv.FormatBool(v.Truthy())
			} else {
				out[k] = v.String()
			}
			continue
		}
		r, ok := raw[k]
		if !ok {
			continue
		}
		if boolSettings[k] {
			out[k] = strconv.FormatBool(animation.ParseBool(r))
			continue
		}
		if s := animation.SanitizeText(fmt.Sprint(r)); s != "" {
			out[k] = s
		}
	}
	return out
}

// sanitizeID keeps only characters valid in a class name suffix.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, id)
}

// PageCSS collects the CSS of every animation rendered into one page so it
// can be emitted as a single style block. It is not safe for concurrent use;
// use one per page render.
type PageCSS struct {
	order []string
	css   map[string]string
}

// NewPageCSS returns an empty accumulator.
func NewPageCSS() *PageCSS {
	return &PageCSS{css: make(map[string]string)}
}

// Add records css under uniqueID. Empty CSS is ignored; a repeated id keeps
// its first position and the latest CSS.
func (p *PageCSS) Add(uniqueID, css string) {
	if css == "" {
		return
	}
	if _, ok := p.css[uniqueID]; !ok {
		p.order = append(p.order, uniqueID)
	}
	p.css[uniqueID] = css
}

// Len returns the number of collected animations.
func (p *PageCSS) Len() int {
	return len(p.order)
}

// Flush returns the style block and empties the accumulator. It returns ""
// when nothing was collected.
func (p *PageCSS) Flush() string {
	if len(p.order) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<style id=\"shogun-slogans-dynamic-css\">\n")
	b.WriteString("/* Shogun Slogans Dynamic CSS */\n")
	for _, id := range p.order {
		b.WriteString("/* Animation ID: " + id + " */\n")
		// A literal </style> would end the block early.
		b.WriteString(strings.ReplaceAll(p.css[id], "</", "<\\/"))
		b.WriteByte('\n')
	}
	b.WriteString("</style>\n")

	p.order = nil
	p.css = make(map[string]string)
	return b.String()
}

// DynamicAnimation renders an animation for page templates and adds its CSS
// to page. Unknown animations render the inline error markup.
func DynamicAnimation(ctx context.Context, env *Env, page *PageCSS, kind, text string, params map[string]any) string {
	out, err := Render(ctx, env, RenderInput{Animation: kind, Text: text, Parameters: params})
	if err != nil {
		if out != nil {
			return out.HTML
		}
		return markup.NotFound(kind)
	}
	page.Add(out.UniqueID, out.CSS)
	return out.HTML
}

// DynamicTypewriter is DynamicAnimation for a typewriter with the given
// speed and cursor.
func DynamicTypewriter(ctx context.Context, env *Env, page *PageCSS, text string, speed int, cursor string) string {
	return DynamicAnimation(ctx, env, page, "typewriter", text, map[string]any{
		"speed":  strconv.Itoa(speed),
		"cursor": cursor,
	})
}
