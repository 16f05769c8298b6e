package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Typewriter(t *testing.T) {
	got := Render(Element{
		Animation: "typewriter",
		UniqueID:  "ab12cd34",
		Text:      "Hello",
		Cursor:    "_",
		Settings:  map[string]string{"speed": "80", "loop": "true", "delete_speed": "40"},
	})
	want := `<div class="shogun-typewriter shogun-typewriter-ab12cd34" data-animation="typewriter" data-unique-id="ab12cd34"` +
		` data-text="Hello" data-delete-speed="40" data-loop="true" data-speed="80">` +
		`<span class="typewriter-text" role="text" aria-label="Hello">Hello</span>` +
		`<span class="typewriter-cursor" aria-hidden="true">_</span></div>`
	assert.Equal(t, want, got)
}

func TestRender_DefaultCursorAndAttributes(t *testing.T) {
	got := Render(Element{Animation: "typewriter", UniqueID: "x", Text: "Hi", Class: "hero big", ID: "slogan"})
	assert.Contains(t, got, `<div id="slogan" class="shogun-typewriter shogun-typewriter-x hero big"`)
	assert.Contains(t, got, `<span class="typewriter-cursor" aria-hidden="true">|</span>`)
}

func TestRender_Effects(t *testing.T) {
	for _, effect := range []string{"fade", "slide", "bounce"} {
		t.Run(effect, func(t *testing.T) {
			got := Render(Element{Animation: effect, UniqueID: "u1", Text: "Go", Settings: map[string]string{"speed": "500"}})
			assert.Contains(t, got, `class="shogun-animated-text shogun-`+effect+` shogun-`+effect+`-u1"`)
			assert.Contains(t, got, `data-animation="`+effect+`"`)
			assert.Contains(t, got, `data-text="Go"`)
			assert.Contains(t, got, `data-speed="500"`)
			assert.Contains(t, got, `<span class="animated-text" role="text">Go</span></div>`)
		})
	}
}

func TestRender_Slogan(t *testing.T) {
	got := Render(Element{Animation: "slide", UniqueID: "s", Text: "Up", Container: ContainerSlogan, Style: "bold"})
	assert.Contains(t, got, `class="shogun-slogan shogun-bold shogun-slide shogun-slide-s"`)
	assert.Contains(t, got, `<span class="slogan-text" role="text">Up</span>`)

	// A typewriter slogan keeps the typewriter scaffold but not the
	// typewriter container class.
	tw := Render(Element{Animation: "typewriter", UniqueID: "s", Text: "Up", Container: ContainerSlogan, Style: "typewriter"})
	assert.Contains(t, tw, `class="shogun-slogan shogun-typewriter-s"`)
	assert.Contains(t, tw, `<span class="typewriter-text" role="text" aria-label="Up">Up</span>`)

	styled := Render(Element{Animation: "fade", UniqueID: "s", Text: "Up", Container: ContainerSlogan, Style: "typewriter"})
	assert.Contains(t, styled, `class="shogun-slogan shogun-fade shogun-fade-s"`)
	assert.Contains(t, styled, `data-animation="fade"`)
	assert.Contains(t, styled, `<span class="typewriter-cursor" aria-hidden="true">|</span>`)
}

func TestRender_TypewriterStyle(t *testing.T) {
	got := Render(Element{Animation: "typewriter", UniqueID: "t", Text: "Hi", Style: "elegant"})
	assert.Contains(t, got, `class="shogun-typewriter shogun-elegant shogun-typewriter-t"`)

	// A style naming a container class is dropped.
	dup := Render(Element{Animation: "typewriter", UniqueID: "t", Text: "Hi", Style: "typewriter"})
	assert.Contains(t, dup, `class="shogun-typewriter shogun-typewriter-t"`)
}

func TestRender_Layouts(t *testing.T) {
	hw := Render(Element{Animation: "handwritten", UniqueID: "x", Text: "ink"})
	assert.Contains(t, hw, `role="text" aria-label="ink"><span class="handwritten-text">ink</span></div>`)
	assert.NotContains(t, hw, "data-text")

	neon := Render(Element{Animation: "neon", UniqueID: "x", Text: "glow", Settings: map[string]string{"speed": "1"}})
	assert.Contains(t, neon, `data-unique-id="x" role="text" aria-label="glow">glow</div>`)
	assert.NotContains(t, neon, "data-speed")

	custom := Render(Element{Animation: "glitch", UniqueID: "y", Text: "z"})
	assert.Contains(t, custom, `class="shogun-glitch-y"`)
	assert.Contains(t, custom, `>z</div>`)
}

func TestRender_Escapes(t *testing.T) {
	got := Render(Element{
		Animation: "neon",
		UniqueID:  "x",
		Text:      `<script>alert("x")</script>`,
		Class:     `a" onclick="b`,
	})
	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, `" onclick="`)
	assert.Contains(t, got, "&lt;script&gt;")

	tw := Render(Element{
		Animation: "typewriter",
		UniqueID:  "x",
		Text:      `"><img src=x>`,
		Settings:  map[string]string{"cursor": `"><b>`, "on load": "x", "Bad": "y"},
	})
	assert.NotContains(t, tw, "<img")
	assert.NotContains(t, tw, "<b>")
	assert.NotContains(t, tw, "data-on")
	assert.NotContains(t, tw, "data-Bad")
}

func TestRenderPreview(t *testing.T) {
	got := RenderPreview(Element{Animation: "typewriter", UniqueID: "u", Text: "T", ID: "ignored"})
	assert.Equal(t, `<div class="shogun-typewriter-u"><span class="typewriter-text" role="text" aria-label="T">T</span>`+
		`<span class="typewriter-cursor" aria-hidden="true">|</span></div>`, got)

	fade := RenderPreview(Element{Animation: "fade", UniqueID: "u", Text: "T"})
	assert.Equal(t, `<div class="shogun-fade-u"><span class="animated-text" role="text">T</span></div>`, fade)
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, `<div class="shogun-error">Animation type "sparkle" not found.</div>`, NotFound("sparkle"))
	assert.NotContains(t, NotFound("<b>"), "<b>")
}
