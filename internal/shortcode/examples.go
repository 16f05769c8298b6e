package shortcode

// Example is a ready-to-paste shortcode.
type Example struct {
	Title       string `json:"title"`
	Shortcode   string `json:"shortcode"`
	Description string `json:"description"`
}

// Examples returns the shortcode examples shown in the gallery.
func Examples() []Example {
	return []Example{
		{"Basic Typewriter", `[shogun_animation type="typewriter" text="Hello World!"]`, "Basic typewriter effect with default settings"},
		{"Fast Typewriter", `[shogun_animation type="typewriter" text="Fast typing!" speed="50"]`, "Fast typewriter effect"},
		{"Custom Cursor", `[shogun_animation type="typewriter" text="Custom cursor" cursor="▌"]`, "Typewriter with custom cursor character"},
		{"Colored Text", `[shogun_animation type="typewriter" text="Colored text" color="#ff6b6b"]`, "Typewriter with custom text color"},
		{"Handwritten Effect", `[shogun_animation type="handwritten" text="Handwritten style"]`, "Handwritten animation effect"},
		{"Neon Glow", `[shogun_animation type="neon" text="Neon Glow" glow_color="#00ffff"]`, "Neon glow effect with cyan color"},
		{"Flickering Neon", `[shogun_animation type="neon" text="Flickering" flicker="true"]`, "Neon effect with flickering animation"},
		{"Enclosed Text", `[shogun_animation type="neon"]Open late[/shogun_animation]`, "Text taken from the enclosed content"},
		{"Typewriter Shorthand", `[shogun_typewriter_v2 text="I will help you make The Smart Move - I guarantee it!" speed="80" color="#2c3e50"]`, "Typewriter tag with a professional slogan"},
		{"Fade In", `[shogun_animation type="fade" text="Fading in" speed="1500"]`, "Text that fades into view"},
		{"Looping Typewriter", `[typewriter_text text="Type, delete, repeat" loop="true" delete_speed="40"]`, "Typewriter that deletes and retypes its text"},
		{"Sliding Slogan", `[shogun_slogan animation="slide" style="bold" text="Rise to the top"]`, "Slogan that slides up into place"},
		{"Bouncing Text", `[animated_text animation="bounce" delay="300"]Boing[/animated_text]`, "Text that bounces in after a short delay"},
	}
}
