package animation

// DefaultText is shown when a request carries no text.
const DefaultText = "Your text here"

// RegisterDefaults registers the built-in animations.
func RegisterDefaults(reg *Registry) {
	reg.Register(Definition{
		Name:        "typewriter",
		Category:    CategoryText,
		Description: "Classic typewriter effect with customizable cursor",
		JSInit:      "ShogunAPI.initTypewriter",
		Parameters: []ParameterSpec{
			IntParam("speed", 100, 10, 1000, "Typing Speed (ms)", "Speed of typing animation in milliseconds"),
			StringParam("cursor", "|", "Cursor Character", "Character to use as cursor"),
			IntParam("cursor_speed", 500, 100, 2000, "Cursor Blink Speed (ms)", "Speed of cursor blinking"),
			ColorParam("color", "inherit", "Text Color", "Color of the text"),
			SizeParam("font_size", "inherit", "Font Size", "Size of the text"),
			StringParam("font_family", "inherit", "Font Family", "Font family for the text"),
		},
		CSSTemplate: typewriterCSS,
	})

	reg.Register(Definition{
		Name:        "handwritten",
		Category:    CategoryText,
		Description: "Handwritten effect with natural variations",
		JSInit:      "ShogunAPI.initHandwritten",
		Parameters: []ParameterSpec{
			IntParam("speed", 150, 50, 500, "Writing Speed (ms)", "Speed of handwriting animation"),
			ColorParam("color", "#2c3e50", "Ink Color", "Color of the handwritten text"),
			StringParam("font_family", "cursive", "Font Family", "Handwriting font family"),
			BoolParam("wobble", true, "Natural Wobble", "Add natural handwriting variations"),
		},
		CSSTemplate: handwrittenCSS,
	})

	reg.Register(Definition{
		Name:        "neon",
		Category:    CategoryVisual,
		Description: "Neon glow effect with customizable colors",
		JSInit:      "ShogunAPI.initNeon",
		Parameters: []ParameterSpec{
			ColorParam("glow_color", "#00ffff", "Glow Color", "Color of the neon glow"),
			ColorParam("text_color", "#ffffff", "Text Color", "Color of the text"),
			IntParam("intensity", 20, 5, 50, "Glow Intensity", "Intensity of the glow effect"),
			BoolParam("flicker", false, "Flicker Effect", "Add flickering neon effect"),
			IntParam("speed", 2000, 500, 5000, "Animation Speed (ms)", "Speed of the neon animation"),
		},
		CSSTemplate: neonCSS,
	})

	for _, e := range []struct {
		name, description string
		extra             []ParameterSpec
		template          string
	}{
		{"fade", "Fade the text in", nil, fadeCSS},
		{"slide", "Slide the text up into place", []ParameterSpec{
			SizeParam("distance", "20px", "Slide Distance", "How far below its final position the text starts"),
		}, slideCSS},
		{"bounce", "Pop the text in with an overshoot", nil, bounceCSS},
	} {
		reg.Register(Definition{
			Name:        e.name,
			Category:    CategoryInteractive,
			Description: e.description,
			JSInit:      "ShogunAPI.initAnimatedText",
			Parameters:  append(effectParams(), e.extra...),
			CSSTemplate: e.template,
		})
	}
}

// effectParams are shared by the class-driven reveal effects. The client
// reads speed, delay, loop and direction from the element's data attributes.
func effectParams() []ParameterSpec {
	return []ParameterSpec{
		IntParam("speed", 1000, 100, 10000, "Duration (ms)", "Length of the reveal"),
		IntParam("delay", 0, 0, 10000, "Delay (ms)", "Wait before the reveal starts"),
		BoolParam("loop", false, "Loop", "Repeat the reveal forever"),
		ColorParam("color", "inherit", "Text Color", "Color of the text"),
		SizeParam("font_size", "inherit", "Font Size", "Size of the text"),
	}
}

const typewriterCSS = `.shogun-typewriter-{{id}} {
    --typing-speed: {{speed}}ms;
    --cursor-char: "{{cursor}}";
    --cursor-speed: {{cursor_speed}}ms;
    --text-color: {{color}};
    font-size: {{font_size}};
    font-family: {{font_family}};
    color: var(--text-color);
    overflow: hidden;
    white-space: nowrap;
    display: inline-block;
    position: relative;
}

.shogun-typewriter-{{id}} .typewriter-text {
    display: inline-block;
    overflow: hidden;
    white-space: nowrap;
    animation: shogun-type-{{id}} calc(var(--typing-speed) * {{text_length}}) steps({{text_length}}, end) forwards;
}

.shogun-typewriter-{{id}} .typewriter-cursor {
    display: inline-block;
    animation: shogun-blink-{{id}} var(--cursor-speed) infinite;
    margin-left: 1px;
}

@keyframes shogun-type-{{id}} {
    from { width: 0; }
    to { width: 100%; }
}

@keyframes shogun-blink-{{id}} {
    0%, 50% { opacity: 1; }
    51%, 100% { opacity: 0; }
}
`

const handwrittenCSS = `.shogun-handwritten-{{id}} {
    --writing-speed: {{speed}}ms;
    --ink-color: {{color}};
    color: var(--ink-color);
    font-family: {{font_family}};
    position: relative;
    overflow: hidden;
    display: inline-block;
}

.shogun-handwritten-{{id}} .handwritten-text {
    display: inline-block;
    opacity: 0;
    animation: shogun-handwrite-{{id}} calc(var(--writing-speed) * {{text_length}}) ease-in-out forwards;
    {{#if wobble}}
    transform: rotate(0.5deg);
    {{/if}}
}

@keyframes shogun-handwrite-{{id}} {
    0% {
        opacity: 0;
        transform: translateY(10px) {{#if wobble}}rotate(0.5deg){{/if}};
    }
    20% {
        opacity: 1;
        transform: translateY(0) {{#if wobble}}rotate(-0.2deg){{/if}};
    }
    100% {
        opacity: 1;
        transform: translateY(0) {{#if wobble}}rotate(0.1deg){{/if}};
    }
}
`

const neonCSS = `.shogun-neon-{{id}} {
    --glow-color: {{glow_color}};
    --text-color: {{text_color}};
    --glow-intensity: {{intensity}}px;
    --animation-speed: {{speed}}ms;

    color: var(--text-color);
    text-shadow:
        0 0 5px var(--glow-color),
        0 0 10px var(--glow-color),
        0 0 15px var(--glow-color),
        0 0 var(--glow-intensity) var(--glow-color);

    {{#if flicker}}
    animation: shogun-neon-flicker-{{id}} var(--animation-speed) infinite alternate;
    {{/if}}
}

{{#if flicker}}
@keyframes shogun-neon-flicker-{{id}} {
    0%, 19%, 21%, 23%, 25%, 54%, 56%, 100% {
        text-shadow:
            0 0 5px var(--glow-color),
            0 0 10px var(--glow-color),
            0 0 15px var(--glow-color),
            0 0 var(--glow-intensity) var(--glow-color);
    }
    20%, 24%, 55% {
        text-shadow: none;
    }
}
{{/if}}
`

const fadeCSS = `.shogun-fade-{{id}} {
    color: {{color}};
    font-size: {{font_size}};
    display: inline-block;
}

.shogun-fade-{{id}}.shogun-animation-fade .animated-text {
    display: inline-block;
    animation: shogun-fade-{{id}} {{speed}}ms ease {{delay}}ms both;
    {{#if loop}}
    animation-iteration-count: infinite;
    {{/if}}
}

@keyframes shogun-fade-{{id}} {
    from { opacity: 0; }
    to { opacity: 1; }
}
`

const slideCSS = `.shogun-slide-{{id}} {
    color: {{color}};
    font-size: {{font_size}};
    display: inline-block;
    overflow: hidden;
}

.shogun-slide-{{id}}.shogun-animation-slide .animated-text {
    display: inline-block;
    animation: shogun-slide-{{id}} {{speed}}ms ease {{delay}}ms both;
    {{#if loop}}
    animation-iteration-count: infinite;
    {{/if}}
}

@keyframes shogun-slide-{{id}} {
    from { opacity: 0; transform: translateY({{distance}}); }
    to { opacity: 1; transform: translateY(0); }
}
`

const bounceCSS = `.shogun-bounce-{{id}} {
    color: {{color}};
    font-size: {{font_size}};
    display: inline-block;
}

.shogun-bounce-{{id}}.shogun-animation-bounce .animated-text {
    display: inline-block;
    animation: shogun-bounce-{{id}} {{speed}}ms cubic-bezier(0.68, -0.55, 0.265, 1.55) {{delay}}ms both;
    {{#if loop}}
    animation-iteration-count: infinite;
    {{/if}}
}

@keyframes shogun-bounce-{{id}} {
    from { opacity: 0; transform: scale(0.8); }
    to { opacity: 1; transform: scale(1); }
}
`
