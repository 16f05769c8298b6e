package client

import (
	"strings"
)

// Element is the slice of the DOM the controller needs.
type Element interface {
	// ID is the element's id attribute.
	ID() string
	Attr(name string) string
	HasAttr(name string) bool
	SetAttr(name, value string)
	HasClass(class string) bool
	AddClass(class string)
	// Text is the element's text content, descendants included.
	Text() string
	// SetText replaces the element's content with text.
	SetText(text string)
	Style(prop string) string
	SetStyle(prop, value string)
	// Find returns the first descendant carrying class, or nil.
	Find(class string) Element
	Children() []Element
	Dispatch(ev Event)
}

// FakeElement is an in-memory Element. Besides tests it backs the stream
// preview and the terminal player, which render frames from its state.
type FakeElement struct {
	attrs    map[string]string
	classes  []string
	text     string
	style    map[string]string
	children []*FakeElement
	parent   *FakeElement
	events   []Event
	watchers []func(*FakeElement)
}

// NewElement returns a detached element with the given classes.
func NewElement(classes ...string) *FakeElement {
	return &FakeElement{
		attrs:   make(map[string]string),
		classes: append([]string(nil), classes...),
		style:   make(map[string]string),
	}
}

// With sets an attribute and returns e, for building trees inline.
func (e *FakeElement) With(name, value string) *FakeElement {
	e.attrs[name] = value
	return e
}

// WithText sets the element's own text and returns e.
func (e *FakeElement) WithText(text string) *FakeElement {
	e.text = text
	return e
}

// Append attaches children and returns e.
func (e *FakeElement) Append(children ...*FakeElement) *FakeElement {
	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
	}
	e.changed(e)
	return e
}

func (e *FakeElement) ID() string { return e.attrs["id"] }

func (e *FakeElement) Attr(name string) string { return e.attrs[name] }

func (e *FakeElement) HasAttr(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

func (e *FakeElement) SetAttr(name, value string) {
	if old, ok := e.attrs[name]; ok && old == value {
		return
	}
	e.attrs[name] = value
	e.changed(e)
}

func (e *FakeElement) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (e *FakeElement) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
	e.changed(e)
}

// Classes returns the class list.
func (e *FakeElement) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *FakeElement) Text() string {
	if len(e.children) == 0 {
		return e.text
	}
	var b strings.Builder
	b.WriteString(e.text)
	for _, c := range e.children {
		b.WriteString(c.Text())
	}
	return b.String()
}

func (e *FakeElement) SetText(text string) {
	if e.text == text && len(e.children) == 0 {
		return
	}
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	e.text = text
	e.changed(e)
}

func (e *FakeElement) Style(prop string) string { return e.style[prop] }

func (e *FakeElement) SetStyle(prop, value string) {
	if e.style[prop] == value {
		return
	}
	if value == "" {
		delete(e.style, prop)
	} else {
		e.style[prop] = value
	}
	e.changed(e)
}

func (e *FakeElement) Find(class string) Element {
	if f := e.find(class); f != nil {
		return f
	}
	return nil
}

func (e *FakeElement) find(class string) *FakeElement {
	for _, c := range e.children {
		if c.HasClass(class) {
			return c
		}
		if f := c.find(class); f != nil {
			return f
		}
	}
	return nil
}

func (e *FakeElement) Children() []Element {
	out := make([]Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *FakeElement) Dispatch(ev Event) {
	e.events = append(e.events, ev)
}

// Events returns the events dispatched on e.
func (e *FakeElement) Events() []Event {
	return append([]Event(nil), e.events...)
}

// Watch registers fn to be called with the mutated element whenever e or
// one of its descendants changes.
func (e *FakeElement) Watch(fn func(*FakeElement)) {
	e.watchers = append(e.watchers, fn)
}

func (e *FakeElement) changed(target *FakeElement) {
	for n := e; n != nil; n = n.parent {
		for _, fn := range n.watchers {
			fn(target)
		}
	}
}

// NewTypewriterElement builds the scaffold a typewriter needs: a
// .shogun-typewriter container holding text and cursor spans.
func NewTypewriterElement(text, cursor string) *FakeElement {
	el := NewElement(ClassTypewriter).With("data-text", text)
	if cursor != "" {
		el.With("data-cursor", cursor)
	}
	return el.Append(
		NewElement("typewriter-text").WithText(text),
		NewElement("typewriter-cursor"),
	)
}

// NewSloganElement builds a .shogun-slogan container revealed with effect.
func NewSloganElement(effect, text string) *FakeElement {
	el := NewElement(ClassSlogan).
		With("data-text", text).
		With("data-animation", effect)
	if effect == EffectTypewriter {
		return el.Append(
			NewElement("typewriter-text").WithText(text),
			NewElement("typewriter-cursor"),
		)
	}
	return el.Append(NewElement("slogan-text").WithText(text))
}

// NewAnimatedTextElement builds a .shogun-animated-text container.
func NewAnimatedTextElement(effect, text string) *FakeElement {
	return NewElement(ClassAnimatedText).
		With("data-text", text).
		With("data-animation", effect).
		Append(NewElement("animated-text").WithText(text))
}
