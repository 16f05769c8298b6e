package shortcode

import (
	"encoding/json"
	"strconv"

	"github.com/hpungsan/shogun/internal/ops"
)

// BlockAttributes is the attribute set of the animated text editor block.
type BlockAttributes struct {
	Text          string `json:"text"`
	AnimationType string `json:"animationType"`
	Speed         int    `json:"speed"`
	Cursor        string `json:"cursor"`
	Color         string `json:"color"`
	FontSize      string `json:"fontSize"`
	FontFamily    string `json:"fontFamily"`
	GlowColor     string `json:"glowColor"`
	Intensity     int    `json:"intensity"`
	Flicker       bool   `json:"flicker"`
	Wobble        bool   `json:"wobble"`
	ClassName     string `json:"className"`
}

// DefaultBlockAttributes returns the block's editor defaults.
func DefaultBlockAttributes() BlockAttributes {
	return BlockAttributes{
		Text:          "Your animated text here...",
		AnimationType: "typewriter",
		Speed:         100,
		Cursor:        "|",
		Color:         "#000000",
		FontSize:      "16px",
		FontFamily:    "inherit",
		GlowColor:     "#00ffff",
		Intensity:     20,
		Flicker:       false,
		Wobble:        true,
	}
}

// ParseBlockAttributes decodes block JSON over the defaults.
func ParseBlockAttributes(data []byte) (BlockAttributes, error) {
	attrs := DefaultBlockAttributes()
	if len(data) == 0 {
		return attrs, nil
	}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return BlockAttributes{}, err
	}
	return attrs, nil
}

// TypewriterBlock returns the attributes of the simpler typewriter block.
func TypewriterBlock(text string, speed int, cursor, className string) BlockAttributes {
	attrs := DefaultBlockAttributes()
	attrs.AnimationType = "typewriter"
	attrs.Text = text
	if text == "" {
		attrs.Text = "Type your message here..."
	}
	if speed != 0 {
		attrs.Speed = speed
	}
	if cursor != "" {
		attrs.Cursor = cursor
	}
	attrs.ClassName = className
	return attrs
}

// RenderInput maps the block to a render request. Only values that differ
// from the editor defaults become parameters, so an untouched block
// renders with the animation's own defaults.
func (b BlockAttributes) RenderInput() ops.RenderInput {
	def := DefaultBlockAttributes()
	kind := b.AnimationType
	if kind == "" {
		kind = def.AnimationType
	}
	params := map[string]any{}
	if b.Speed != def.Speed && b.Speed != 0 {
		params["speed"] = strconv.Itoa(b.Speed)
	}
	if b.Cursor != def.Cursor && b.Cursor != "" {
		params["cursor"] = b.Cursor
	}
	if b.Color != def.Color && b.Color != "" {
		params["color"] = b.Color
	}
	if b.FontSize != def.FontSize && b.FontSize != "" {
		params["font_size"] = b.FontSize
	}
	if b.FontFamily != def.FontFamily && b.FontFamily != "" {
		params["font_family"] = b.FontFamily
	}

	switch kind {
	case "neon":
		if b.GlowColor != def.GlowColor && b.GlowColor != "" {
			params["glow_color"] = b.GlowColor
		}
		if b.Intensity != def.Intensity && b.Intensity != 0 {
			params["intensity"] = strconv.Itoa(b.Intensity)
		}
		if b.Flicker {
			params["flicker"] = "true"
		}
	case "handwritten":
		if !b.Wobble {
			params["wobble"] = "false"
		}
	}

	return ops.RenderInput{
		Animation:  kind,
		Parameters: params,
		Text:       b.Text,
		Class:      b.ClassName,
	}
}
