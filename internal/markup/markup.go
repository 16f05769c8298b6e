// Package markup renders the HTML that pairs with compiled animation CSS.
package markup

import (
	"html/template"
	"sort"
	"strings"
)

// Container classes select the client controller that drives an element.
// CSS-only animations carry none.
const (
	ContainerTypewriter = "shogun-typewriter"
	ContainerSlogan     = "shogun-slogan"
	ContainerAnimated   = "shogun-animated-text"
)

// Element describes one rendered animation element.
type Element struct {
	Animation string
	UniqueID  string
	Text      string
	// Class is extra classes appended after the scoped one.
	Class string
	// ID is the element's id attribute; empty omits it.
	ID     string
	Cursor string
	// Container overrides the container class derived from Animation.
	Container string
	// Style is emitted as a shogun-<style> class on client-driven elements.
	// A slogan styled "typewriter" keeps the typewriter scaffold.
	Style string
	// Settings are client settings emitted as data-* attributes. Keys use
	// underscores (delete_speed becomes data-delete-speed).
	Settings map[string]string
}

// ContainerFor returns the container class the client discovers for an
// animation rendered without an explicit container.
func ContainerFor(animation string) string {
	switch animation {
	case "typewriter":
		return ContainerTypewriter
	case "fade", "slide", "bounce":
		return ContainerAnimated
	}
	return ""
}

// ClassName is the scoped class the compiled CSS targets.
func (e Element) ClassName() string {
	return "shogun-" + e.Animation + "-" + e.UniqueID
}

func (e Element) container() string {
	if e.Container != "" {
		return e.Container
	}
	return ContainerFor(e.Animation)
}

// Classes is the full class attribute value: container class, effect
// classes, scoped class, then the caller's classes.
func (e Element) Classes() string {
	var cls []string
	add := func(c string) {
		for _, have := range cls {
			if have == c {
				return
			}
		}
		cls = append(cls, c)
	}

	container := e.container()
	if container != "" {
		add(container)
	}
	// Another container class would hand the element to the wrong
	// controller.
	if container != "" && e.Style != "" && !isContainer("shogun-"+e.Style) {
		add("shogun-" + e.Style)
	}
	switch container {
	case ContainerSlogan:
		if !isContainer("shogun-" + e.Animation) {
			add("shogun-" + e.Animation)
		}
	case ContainerAnimated:
		add("shogun-" + e.Animation)
	}
	add(e.ClassName())
	for _, c := range strings.Fields(e.Class) {
		add(c)
	}
	return strings.Join(cls, " ")
}

func isContainer(class string) bool {
	switch class {
	case ContainerTypewriter, ContainerSlogan, ContainerAnimated:
		return true
	}
	return false
}

// attrs builds the opening tag's attributes. Names come from fixed keys
// and values are escaped here.
func (e Element) attrs() template.HTMLAttr {
	var b strings.Builder
	attr := func(name, value string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name + `="` + template.HTMLEscapeString(value) + `"`)
	}

	if e.ID != "" {
		attr("id", e.ID)
	}
	attr("class", e.Classes())
	attr("data-animation", e.Animation)
	attr("data-unique-id", e.UniqueID)
	if e.container() == "" {
		attr("role", "text")
		attr("aria-label", e.Text)
		return template.HTMLAttr(b.String())
	}

	attr("data-text", e.Text)
	keys := make([]string, 0, len(e.Settings))
	for k := range e.Settings {
		if validKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		attr("data-"+strings.ReplaceAll(k, "_", "-"), e.Settings[k])
	}
	return template.HTMLAttr(b.String())
}

func validKey(k string) bool {
	if k == "" || k == "text" || k == "animation" || k == "unique_id" {
		return false
	}
	for _, r := range k {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

const (
	typewriterBody = `<span class="typewriter-text" role="text" aria-label="{{.Text}}">{{.Text}}</span>` +
		`<span class="typewriter-cursor" aria-hidden="true">{{.Cursor}}</span>`
	open = `<div {{.Attrs}}>`
)

var templates = template.Must(template.New("markup").Parse(
	`{{define "typewriter"}}` + open + typewriterBody + `</div>{{end}}` +
		`{{define "slogan"}}` + open + `<span class="slogan-text" role="text">{{.Text}}</span></div>{{end}}` +
		`{{define "animated"}}` + open + `<span class="animated-text" role="text">{{.Text}}</span></div>{{end}}` +
		`{{define "handwritten"}}` + open + `<span class="handwritten-text">{{.Text}}</span></div>{{end}}` +
		`{{define "default"}}` + open + `{{.Text}}</div>{{end}}` +
		`{{define "preview-typewriter"}}<div class="{{.ClassName}}">` + typewriterBody + `</div>{{end}}` +
		`{{define "preview-animated"}}<div class="{{.ClassName}}"><span class="animated-text" role="text">{{.Text}}</span></div>{{end}}` +
		`{{define "preview-handwritten"}}<div class="{{.ClassName}}"><span class="handwritten-text">{{.Text}}</span></div>{{end}}` +
		`{{define "preview-default"}}<div class="{{.ClassName}}" role="text">{{.Text}}</div>{{end}}` +
		`{{define "not-found"}}<div class="shogun-error">Animation type "{{.}}" not found.</div>{{end}}`,
))

type view struct {
	Element
	Attrs template.HTMLAttr
}

// Render returns the element's HTML. Elements driven by the client carry
// their container class, data-text and data-* settings; CSS-only ones are
// labelled for assistive technology directly. Text, class and id are
// escaped.
func Render(e Element) string {
	if e.Cursor == "" {
		e.Cursor = "|"
	}
	return execute(e.layout(""), view{Element: e, Attrs: e.attrs()})
}

// RenderPreview returns the bare markup used by editor previews: only the
// scoped class, no id or data attributes.
func RenderPreview(e Element) string {
	if e.Cursor == "" {
		e.Cursor = "|"
	}
	name := e.layout("preview-")
	if name == "preview-slogan" {
		name = "preview-animated"
	}
	return execute(name, view{Element: e})
}

// NotFound is the inline error shown in place of an unknown animation.
func NotFound(name string) string {
	return execute("not-found", name)
}

func (e Element) layout(prefix string) string {
	switch e.container() {
	case ContainerTypewriter:
		return prefix + "typewriter"
	case ContainerSlogan:
		if e.Animation == "typewriter" || e.Style == "typewriter" {
			return prefix + "typewriter"
		}
		return prefix + "slogan"
	case ContainerAnimated:
		return prefix + "animated"
	}
	if e.Animation == "handwritten" {
		return prefix + "handwritten"
	}
	return prefix + "default"
}

func execute(name string, data any) string {
	var b strings.Builder
	// Templates are fixed and the data is plain strings, so execution
	// cannot fail after Must.
	_ = templates.ExecuteTemplate(&b, name, data)
	return b.String()
}
