package shortcode

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/shogun/internal/cache"
	"github.com/hpungsan/shogun/internal/config"
	"github.com/hpungsan/shogun/internal/markup"
	"github.com/hpungsan/shogun/internal/ops"
)

func newTestEnv(t *testing.T) *ops.Env {
	t.Helper()
	env, err := ops.NewEnv(config.DefaultConfig(), cache.NewMemoryStore(nil), nil, nil)
	require.NoError(t, err)
	return env
}

func TestParse(t *testing.T) {
	content := `Intro [shogun_animation type="neon" text='Glow' intensity=30 FLICKER="true"] mid ` +
		`[shogun_typewriter_v2 speed="80"]Typed[/shogun_typewriter_v2] end [shogun_animation /]`

	tags := Parse(content)
	require.Len(t, tags, 3)

	assert.Equal(t, TagAnimation, tags[0].Name)
	assert.Equal(t, map[string]string{"type": "neon", "text": "Glow", "intensity": "30", "flicker": "true"}, tags[0].Attrs)
	assert.Equal(t, "", tags[0].Content)

	assert.Equal(t, TagTypewriter, tags[1].Name)
	assert.Equal(t, "Typed", tags[1].Content)
	assert.Equal(t, `[shogun_typewriter_v2 speed="80"]Typed[/shogun_typewriter_v2]`, content[tags[1].Start:tags[1].End])

	assert.Empty(t, tags[2].Attrs)
	assert.Equal(t, "[shogun_animation /]", content[tags[2].Start:tags[2].End])
}

func TestParse_UnclosedAndEscaped(t *testing.T) {
	tags := Parse(`[shogun_animation text="a"] x [shogun_animation text="b"]y[/shogun_animation]`)
	require.Len(t, tags, 2)
	assert.Equal(t, "", tags[0].Content, "first opener has no closer of its own")
	assert.Equal(t, "y", tags[1].Content)

	assert.Empty(t, Parse(`literal [[shogun_animation text="x"]] here`))
	assert.Empty(t, Parse(`[shogun_animations] [other_tag]`))
}

func TestTag_RenderInput(t *testing.T) {
	tag := Parse(`[shogun_animation type="neon" text="Hi" class="big" id="n1" cache="false" intensity="40"]`)[0]
	in := tag.RenderInput()

	assert.Equal(t, "neon", in.Animation)
	assert.Equal(t, "Hi", in.Text)
	assert.Equal(t, "big", in.Class)
	assert.Equal(t, "n1", in.ID)
	require.NotNil(t, in.UseCache)
	assert.False(t, *in.UseCache)
	assert.Equal(t, map[string]any{"intensity": "40"}, in.Parameters)

	forced := Parse(`[shogun_typewriter_v2 type="neon"]Body[/shogun_typewriter_v2]`)[0].RenderInput()
	assert.Equal(t, "typewriter", forced.Animation)
	assert.Equal(t, "Body", forced.Text)
	assert.True(t, *forced.UseCache)
}

func TestParse_Aliases(t *testing.T) {
	tags := Parse(`[typewriter_text text="a"] [shogun_slogan animation="slide"]b[/shogun_slogan] [animated_text/]`)
	require.Len(t, tags, 3)
	assert.Equal(t, TagTypewriterText, tags[0].Name)
	assert.Equal(t, TagSlogan, tags[1].Name)
	assert.Equal(t, "b", tags[1].Content)
	assert.Equal(t, TagAnimatedText, tags[2].Name)
}

func TestTag_RenderInput_Aliases(t *testing.T) {
	tw := Parse(`[typewriter_text style="elegant" loop="true" delete_speed="30"]`)[0].RenderInput()
	assert.Equal(t, "typewriter", tw.Animation)
	assert.Equal(t, "Sample typewriter text", tw.Text)
	assert.Equal(t, "elegant", tw.Style)
	assert.Equal(t, "", tw.Container)
	assert.Equal(t, map[string]any{"loop": "true", "delete_speed": "30"}, tw.Parameters)

	slogan := Parse(`[shogun_slogan size="2em" speed="800"]`)[0].RenderInput()
	assert.Equal(t, "fade", slogan.Animation)
	assert.Equal(t, "Your amazing slogan here", slogan.Text)
	assert.Equal(t, "typewriter", slogan.Style)
	assert.Equal(t, markup.ContainerSlogan, slogan.Container)
	assert.Equal(t, map[string]any{"font_size": "2em", "speed": "800"}, slogan.Parameters)

	animated := Parse(`[animated_text animation="bounce" direction="reverse"]Hop[/animated_text]`)[0].RenderInput()
	assert.Equal(t, "bounce", animated.Animation)
	assert.Equal(t, "Hop", animated.Text)
	assert.Equal(t, map[string]any{"direction": "reverse"}, animated.Parameters)

	empty := Parse(`[animated_text]`)[0].RenderInput()
	assert.Equal(t, "fade", empty.Animation)
	assert.Equal(t, "Animated text", empty.Text)
}

func TestExpand_Effects(t *testing.T) {
	env := newTestEnv(t)
	for _, effect := range []string{"fade", "slide", "bounce"} {
		t.Run(effect, func(t *testing.T) {
			html, pageCSS, err := Expand(context.Background(), env, `[shogun_animation type="`+effect+`" text="Go" loop="1"]`)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(html, `<div class="shogun-animated-text shogun-`+effect+` shogun-`+effect+`-`))
			assert.Contains(t, html, `data-loop="true"`)
			assert.Contains(t, html, `data-speed="1000"`)
			assert.Contains(t, html, `<span class="animated-text" role="text">Go</span>`)
			assert.Contains(t, pageCSS, "@keyframes shogun-"+effect+"-")
			assert.Contains(t, pageCSS, "animation-iteration-count: infinite")

			html, _, err = Expand(context.Background(), env, `[animated_text animation="`+effect+`" direction="alternate"]Go[/animated_text]`)
			require.NoError(t, err)
			assert.Contains(t, html, `data-direction="alternate"`)
			assert.NotContains(t, html, "shogun-error")

			html, _, err = Expand(context.Background(), env, `[shogun_slogan animation="`+effect+`" style="plain" text="Go"]`)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(html, `<div class="shogun-slogan shogun-plain shogun-`+effect+` shogun-`+effect+`-`))
			assert.Contains(t, html, `<span class="slogan-text" role="text">Go</span>`)
		})
	}
}

func TestExpand_TypewriterAliases(t *testing.T) {
	env := newTestEnv(t)
	html, _, err := Expand(context.Background(), env, `[typewriter_text text="Hi" loop="yes" delete_speed="30" pause_end="1500"]`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<div class="shogun-typewriter shogun-typewriter-`))
	assert.Contains(t, html, `data-text="Hi" data-cursor="|" data-delete-speed="30" data-loop="true" data-pause-end="1500" data-speed="100"`)

	// A typewriter slogan is driven by the slogan controller.
	html, _, err = Expand(context.Background(), env, `[shogun_slogan animation="typewriter" text="Hi"]`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<div class="shogun-slogan shogun-typewriter-`))
	assert.Contains(t, html, `data-animation="typewriter"`)
	assert.Contains(t, html, `<span class="typewriter-text" role="text" aria-label="Hi">Hi</span>`)
}

func TestExpand(t *testing.T) {
	env := newTestEnv(t)
	content := `<p>[shogun_animation type="neon" text="Glow" flicker="true"]</p><p>[shogun_animation type="sparkle"]</p>`

	html, pageCSS, err := Expand(context.Background(), env, content)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, `<p><div class="shogun-neon-`))
	assert.Contains(t, html, `<p><div class="shogun-error">Animation type "sparkle" not found.</div></p>`)
	assert.NotContains(t, html, "[shogun_animation")

	assert.True(t, strings.HasPrefix(pageCSS, `<style id="shogun-slogans-dynamic-css">`))
	assert.Contains(t, pageCSS, "@keyframes shogun-neon-flicker-")
	assert.Equal(t, 1, strings.Count(pageCSS, "/* Animation ID:"))
}

func TestExpand_NoShortcodes(t *testing.T) {
	html, pageCSS, err := Expand(context.Background(), newTestEnv(t), "plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", html)
	assert.Equal(t, "", pageCSS)
}

func TestBlockAttributes(t *testing.T) {
	attrs, err := ParseBlockAttributes([]byte(`{"animationType":"neon","text":"Sign","intensity":35,"flicker":true,"color":"#000000"}`))
	require.NoError(t, err)

	in := attrs.RenderInput()
	assert.Equal(t, "neon", in.Animation)
	assert.Equal(t, "Sign", in.Text)
	assert.Equal(t, map[string]any{"intensity": "35", "flicker": "true"}, in.Parameters, "defaults are not forwarded")

	hw := BlockAttributes{AnimationType: "handwritten", Wobble: false, Speed: 100, Cursor: "|", Color: "#000000", FontSize: "16px", FontFamily: "inherit"}
	assert.Equal(t, map[string]any{"wobble": "false"}, hw.RenderInput().Parameters)

	_, err = ParseBlockAttributes([]byte(`{`))
	assert.Error(t, err)

	def, err := ParseBlockAttributes(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockAttributes(), def)
}

func TestBlockAttributes_Effects(t *testing.T) {
	env := newTestEnv(t)
	for _, effect := range []string{"fade", "slide", "bounce"} {
		attrs, err := ParseBlockAttributes([]byte(`{"animationType":"` + effect + `","text":"Wave","speed":2000,"fontSize":"24px"}`))
		require.NoError(t, err)
		in := attrs.RenderInput()
		assert.Equal(t, effect, in.Animation)
		assert.Equal(t, map[string]any{"speed": "2000", "font_size": "24px"}, in.Parameters)

		out, err := ops.Render(context.Background(), env, in)
		require.NoError(t, err, effect)
		assert.Contains(t, out.HTML, `class="shogun-animated-text shogun-`+effect+` `)
		assert.Contains(t, out.CSS, "2000ms")
		assert.Contains(t, out.CSS, "font-size: 24px")
	}
}

func TestTypewriterBlock(t *testing.T) {
	in := TypewriterBlock("", 60, "", "wide").RenderInput()
	assert.Equal(t, "typewriter", in.Animation)
	assert.Equal(t, "Type your message here...", in.Text)
	assert.Equal(t, "wide", in.Class)
	assert.Equal(t, map[string]any{"speed": "60"}, in.Parameters)

	out, err := ops.Render(context.Background(), newTestEnv(t), in)
	require.NoError(t, err)
	assert.Contains(t, out.CSS, "--typing-speed: 60ms")
}

func TestExamplesExpand(t *testing.T) {
	env := newTestEnv(t)
	for _, ex := range Examples() {
		html, css, err := Expand(context.Background(), env, ex.Shortcode)
		require.NoError(t, err, ex.Title)
		assert.NotContains(t, html, "shogun-error", ex.Title)
		assert.NotEmpty(t, css, ex.Title)
	}
}
