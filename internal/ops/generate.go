package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/css"
	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/markup"
)

// GenerateCSSInput contains parameters for the GenerateCSS operation.
type GenerateCSSInput struct {
	Animation  string
	Parameters map[string]any // untrusted; sanitized per the definition
	Selector   string         // optional replacement for the scoped selector
	UseCache   *bool          // default: true
}

// GenerateCSSOutput contains the result of the GenerateCSS operation.
type GenerateCSSOutput struct {
	CSS      string `json:"css"`
	CacheKey string `json:"cache_key"`
	Cached   bool   `json:"cached"`
	JSInit   string `json:"js_init"`
	Selector string `json:"selector"`
	UniqueID string `json:"unique_id"`
}

// GenerateCSS compiles an animation with the stable id for its parameters.
func GenerateCSS(ctx context.Context, env *Env, input GenerateCSSInput) (*GenerateCSSOutput, error) {
	name := strings.TrimSpace(input.Animation)
	if name == "" {
		return nil, errors.NewInvalidRequest("animation is required")
	}
	def, params, ok := env.Generator.Resolve(name, input.Parameters)
	if !ok {
		return nil, errors.NewAnimationNotFound(name)
	}

	uniqueID := css.StableID(name, params)
	selector := animation.SanitizeText(input.Selector)
	key := cacheKey(name, params, uniqueID, selector)

	compute := func() (string, error) {
		out := env.Generator.CompileParams(def, params, uniqueID).CSS
		if out == "" {
			return "", errors.NewCSSGenerationFailed(name)
		}
		if selector != "" {
			out = css.ApplySelector(out, name, uniqueID, selector)
		}
		return out, nil
	}

	compiled, cached, err := cachedCompile(ctx, env, key, boolDefault(input.UseCache, true), compute)
	if err != nil {
		return nil, err
	}

	if selector == "" {
		selector = css.Selector(name, uniqueID)
	}
	return &GenerateCSSOutput{
		CSS:      compiled,
		CacheKey: key,
		Cached:   cached,
		JSInit:   def.JSInit,
		Selector: selector,
		UniqueID: uniqueID,
	}, nil
}

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	Animation  string
	Text       string
	Parameters map[string]any
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	HTML       string         `json:"html"`
	CSS        string         `json:"css"`
	JSInit     string         `json:"js_init"`
	Selector   string         `json:"selector"`
	Parameters map[string]any `json:"parameters"`
}

// Preview compiles an animation for an editor preview. Previews bypass the cache.
func Preview(ctx context.Context, env *Env, input PreviewInput) (*PreviewOutput, error) {
	text := animation.CleanText(input.Text)
	if text == "" {
		text = animation.DefaultText
	}
	raw := withText(input.Parameters, text)

	noCache := false
	gen, err := GenerateCSS(ctx, env, GenerateCSSInput{
		Animation:  input.Animation,
		Parameters: raw,
		UseCache:   &noCache,
	})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Animation)
	_, params, _ := env.Generator.Resolve(name, raw)
	resolved := params.Native()
	resolved["text"] = text

	return &PreviewOutput{
		HTML: markup.RenderPreview(markup.Element{
			Animation: name,
			UniqueID:  gen.UniqueID,
			Text:      text,
			Cursor:    cursorOf(params),
		}),
		CSS:        gen.CSS,
		JSInit:     gen.JSInit,
		Selector:   gen.Selector,
		Parameters: resolved,
	}, nil
}

// cachedCompile runs compute through the cache when enabled.
func cachedCompile(ctx context.Context, env *Env, key string, useCache bool, compute func() (string, error)) (string, bool, error) {
	if !useCache || env.Cache == nil {
		out, err := compute()
		return out, false, err
	}
	return env.Cache.GetOrCompute(ctx, key, compute)
}

// withText returns a copy of raw with the text meta parameter set.
func withText(raw map[string]any, text string) map[string]any {
	out := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	out["text"] = text
	return out
}

func cursorOf(params animation.Params) string {
	if v, ok := params["cursor"]; ok && v.String() != "" {
		return v.String()
	}
	return "|"
}

func boolDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
