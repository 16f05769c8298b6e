package client

import "strings"

// Event names.
const (
	EventTypewriterComplete = "shogun:typewriter:complete"
	EventSloganComplete     = "shogun:slogan:complete"
	EventAnimatedComplete   = "shogun:animated:complete"
	EventInitialized        = "shogun:initialized"
)

// eventPrefix is added to names passed to On without it.
const eventPrefix = "shogun:"

// Event is a lifecycle notification. Completion events carry ID and Text,
// plus Type for slogans and animated text; the initialized event carries
// the page summary fields.
type Event struct {
	Name                 string `json:"name"`
	ID                   string `json:"id,omitempty"`
	Type                 string `json:"type,omitempty"`
	Text                 string `json:"text,omitempty"`
	Version              string `json:"version,omitempty"`
	AnimationsCount      int    `json:"animationsCount,omitempty"`
	PrefersReducedMotion bool   `json:"prefersReducedMotion,omitempty"`
}

// Listener receives events.
type Listener func(Event)

// Subscription identifies a listener registered with On.
type Subscription struct {
	name string
	id   int
}

type bus struct {
	next      int
	listeners map[string][]subscriber
}

type subscriber struct {
	id int
	fn Listener
}

func eventName(name string) string {
	if strings.HasPrefix(name, eventPrefix) {
		return name
	}
	return eventPrefix + name
}

func (b *bus) on(name string, fn Listener) Subscription {
	if b.listeners == nil {
		b.listeners = make(map[string][]subscriber)
	}
	name = eventName(name)
	b.next++
	b.listeners[name] = append(b.listeners[name], subscriber{id: b.next, fn: fn})
	return Subscription{name: name, id: b.next}
}

func (b *bus) off(sub Subscription) {
	subs := b.listeners[sub.name]
	for i, s := range subs {
		if s.id == sub.id {
			b.listeners[sub.name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (b *bus) emit(ev Event) {
	// Copy so listeners may unsubscribe while being notified.
	subs := append([]subscriber(nil), b.listeners[ev.Name]...)
	for _, s := range subs {
		s.fn(ev)
	}
}
