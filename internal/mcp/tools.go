package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("animation_list",
	mcp.WithDescription("List registered text animations with their parameters, sorted by name."),
	mcp.WithString("category",
		mcp.Description("Only list animations of this category."),
		mcp.Enum("text", "visual", "interactive", "advanced"),
	),
)

var getToolDef = mcp.NewTool("animation_get",
	mcp.WithDescription("Get one animation definition, including its parameter order and init script."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Animation name, e.g. typewriter or neon.")),
)

var generateCSSToolDef = mcp.NewTool("animation_generate_css",
	mcp.WithDescription("Compile an animation to minified CSS. Invalid parameter values fall back to defaults; out of range numbers are clamped."),
	mcp.WithString("animation", mcp.Required(), mcp.Description("Animation name.")),
	mcp.WithObject("parameters", mcp.Description("Parameter values keyed by name.")),
	mcp.WithString("selector", mcp.Description("Replace the scoped class selector with this selector.")),
	mcp.WithBoolean("use_cache", mcp.Description("Read and write the CSS cache (default true).")),
)

var previewToolDef = mcp.NewTool("animation_preview",
	mcp.WithDescription("Compile an animation for a preview and return its HTML and CSS. Previews are never cached."),
	mcp.WithString("animation", mcp.Required(), mcp.Description("Animation name.")),
	mcp.WithString("text", mcp.Description("Text to animate.")),
	mcp.WithObject("parameters", mcp.Description("Parameter values keyed by name.")),
)

var renderToolDef = mcp.NewTool("animation_render",
	mcp.WithDescription("Expand [shogun_animation] and [shogun_typewriter_v2] shortcodes in content. Returns the HTML and the page style block."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Content containing shortcodes.")),
)

var exportToolDef = mcp.NewTool("animation_export",
	mcp.WithDescription("Write registered animations to a YAML catalog in the exports directory. The file loads back through animations_file."),
	mcp.WithString("path", mcp.Description("Destination .yaml file directly inside the exports directory. Omit for a timestamped name.")),
	mcp.WithArray("names", mcp.Description("Animations to export. Omit to export all."), mcp.WithStringItems()),
)

var cacheClearToolDef = mcp.NewTool("cache_clear",
	mcp.WithDescription("Clear one cached stylesheet by key, or the whole CSS cache."),
	mcp.WithString("cache_key", mcp.Description("Key to clear. Omit to clear everything.")),
)
