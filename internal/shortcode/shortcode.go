// Package shortcode expands the shogun shortcodes embedded in content into
// rendered animations.
package shortcode

import (
	"context"
	"regexp"
	"strings"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/markup"
	"github.com/hpungsan/shogun/internal/ops"
)

// Tag names.
const (
	TagAnimation  = "shogun_animation"
	TagTypewriter = "shogun_typewriter_v2"

	// Older tags, kept so existing content keeps rendering.
	TagTypewriterText = "typewriter_text"
	TagSlogan         = "shogun_slogan"
	TagAnimatedText   = "animated_text"
)

// tagDefaults is the text an alias renders when given none.
var tagDefaults = map[string]string{
	TagTypewriterText: "Sample typewriter text",
	TagSlogan:         "Your amazing slogan here",
	TagAnimatedText:   "Animated text",
}

// Tag is one shortcode occurrence in content.
type Tag struct {
	Name    string
	Attrs   map[string]string
	Content string
	// Start and End are byte offsets of the whole tag, closing tag included.
	Start, End int
}

var (
	openRegex = regexp.MustCompile(`\[(` + strings.Join([]string{
		TagAnimation, TagTypewriter, TagTypewriterText, TagSlogan, TagAnimatedText,
	}, "|") + `)(\s[^\]]*?)?(/)?\]`)
	attrRegex = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"|([\w-]+)\s*=\s*'([^']*)'|([\w-]+)\s*=\s*([^\s'"\]]+)`)
)

// Parse finds every shortcode in content, in order. A tag without a
// matching closing tag is treated as self-closing; a tag wrapped in double
// brackets ([[...]]) is an escape and is skipped.
func Parse(content string) []Tag {
	var tags []Tag
	pos := 0
	for pos < len(content) {
		loc := openRegex.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		name := content[pos+loc[2] : pos+loc[3]]
		var rawAttrs string
		if loc[4] >= 0 {
			rawAttrs = content[pos+loc[4] : pos+loc[5]]
		}
		selfClosing := loc[6] >= 0

		if start > 0 && content[start-1] == '[' && end < len(content) && content[end] == ']' {
			pos = end + 1
			continue
		}

		tag := Tag{Name: name, Attrs: ParseAttrs(rawAttrs), Start: start, End: end}
		if !selfClosing {
			closing := "[/" + name + "]"
			if i := strings.Index(content[end:], closing); i >= 0 {
				// Only pair with the closing tag if no other opener of the
				// same name comes first.
				next := openRegex.FindStringSubmatchIndex(content[end:])
				if next == nil || next[0] > i || content[end+next[2]:end+next[3]] != name {
					tag.Content = content[end : end+i]
					tag.End = end + i + len(closing)
				}
			}
		}
		tags = append(tags, tag)
		pos = tag.End
	}
	return tags
}

// ParseAttrs parses name="value", name='value' and name=value pairs.
// Names are lowercased; positional values are ignored.
func ParseAttrs(s string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrRegex.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		}
	}
	return attrs
}

// reserved attributes are not animation parameters.
var reserved = map[string]bool{
	"type": true, "text": true, "class": true, "id": true, "cache": true, "fresh": true,
	"style": true, "animation": true,
}

// RenderInput maps a tag to a render request. Text comes from the text
// attribute, then the enclosed content, then the tag's default.
//
// [shogun_animation] takes its animation from type (default typewriter).
// [shogun_typewriter_v2] and [typewriter_text] always render a typewriter.
// [shogun_slogan] and [animated_text] take it from animation (default
// fade); a slogan also carries a style (default typewriter) and maps size
// to font_size.
func (t Tag) RenderInput() ops.RenderInput {
	var kind, style, container string
	switch t.Name {
	case TagTypewriter:
		kind = "typewriter"
	case TagTypewriterText:
		kind = "typewriter"
		style = t.Attrs["style"]
	case TagSlogan:
		kind = attrOr(t.Attrs, "animation", "fade")
		style = attrOr(t.Attrs, "style", "typewriter")
		container = markup.ContainerSlogan
	case TagAnimatedText:
		kind = attrOr(t.Attrs, "animation", "fade")
	default:
		kind = attrOr(t.Attrs, "type", "typewriter")
	}

	text := t.Attrs["text"]
	if text == "" {
		text = t.Content
	}
	if text == "" {
		text = tagDefaults[t.Name]
	}
	useCache := true
	if v, ok := t.Attrs["cache"]; ok {
		useCache = animation.ParseBool(v)
	}

	params := map[string]any{}
	for k, v := range t.Attrs {
		if !reserved[k] {
			params[k] = v
		}
	}
	if t.Name == TagSlogan {
		if size, ok := params["size"]; ok {
			if _, set := params["font_size"]; !set {
				params["font_size"] = size
			}
			delete(params, "size")
		}
	}
	return ops.RenderInput{
		Animation:  kind,
		Parameters: params,
		Text:       text,
		ID:         t.Attrs["id"],
		Class:      t.Attrs["class"],
		UseCache:   &useCache,
		Fresh:      animation.ParseBool(t.Attrs["fresh"]),
		Container:  container,
		Style:      style,
	}
}

func attrOr(attrs map[string]string, name, def string) string {
	if v := strings.TrimSpace(attrs[name]); v != "" {
		return v
	}
	return def
}

// Expand replaces every shortcode in content with its rendered HTML and
// returns the page's style block ("" when nothing rendered CSS). Unknown
// animation types render the inline error markup.
func Expand(ctx context.Context, env *ops.Env, content string) (html, pageCSS string, err error) {
	tags := Parse(content)
	if len(tags) == 0 {
		return content, "", nil
	}

	page := ops.NewPageCSS()
	var b strings.Builder
	last := 0
	for _, tag := range tags {
		b.WriteString(content[last:tag.Start])
		in := tag.RenderInput()
		out, err := ops.Render(ctx, env, in)
		switch {
		case err == nil:
			page.Add(out.UniqueID, out.CSS)
			b.WriteString(out.HTML)
		case out != nil:
			b.WriteString(out.HTML)
		default:
			return "", "", err
		}
		last = tag.End
	}
	b.WriteString(content[last:])
	return b.String(), page.Flush(), nil
}
