package client

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ClassAnimatedTextNode marks an animated text container's text node.
const ClassAnimatedTextNode = "animated-text"

// AnimatedText drives a CSS animation selected by class. The instance only
// flips the play state and times completion.
type AnimatedText struct {
	base
	effect    string
	direction string
	settings  Settings
	text      Element

	startedAt time.Time
	remaining time.Duration
}

func newAnimatedText(h *host, el Element) *AnimatedText {
	a := &AnimatedText{base: newBase(h, KindAnimated, el)}
	a.text = el.Find(ClassAnimatedTextNode)
	if a.text == nil {
		a.fail(errors.Errorf("missing .%s element", ClassAnimatedTextNode))
		return a
	}

	a.effect = el.Attr("data-animation")
	if a.effect == "" {
		a.effect = EffectFade
	}
	a.direction = el.Attr("data-direction")
	if a.direction == "" {
		a.direction = "normal"
	}
	a.settings = ParseEffectSettings(el, a.text, h.defaults)

	el.AddClass("shogun-animation-" + a.effect)
	a.text.SetStyle("animation-duration", strconv.FormatInt(a.settings.Speed.Milliseconds(), 10)+"ms")
	a.text.SetStyle("animation-delay", strconv.FormatInt(a.settings.Delay.Milliseconds(), 10)+"ms")
	a.text.SetStyle("animation-direction", a.direction)
	a.text.SetStyle("animation-fill-mode", "both")
	if a.settings.Loop {
		a.text.SetStyle("animation-iteration-count", "infinite")
	}
	a.text.SetStyle("animation-play-state", "paused")
	return a
}

// Effect is the CSS animation in use.
func (a *AnimatedText) Effect() string { return a.effect }

func (a *AnimatedText) Start() {
	if !a.startable() {
		return
	}
	a.state = StateRunning

	if a.reduced() {
		a.text.SetStyle("animation", "none")
		a.text.SetStyle("opacity", "1")
		a.text.SetStyle("transform", "none")
		a.complete()
		return
	}

	a.text.SetStyle("animation-play-state", "running")
	if !a.settings.Loop {
		a.remaining = a.settings.Delay + a.settings.Speed
		a.startedAt = a.h.sched.Now()
		a.schedule(a.remaining, a.complete)
	}
}

func (a *AnimatedText) complete() {
	a.state = StateComplete
	a.emit(Event{Name: EventAnimatedComplete, ID: a.id, Type: a.effect, Text: a.settings.Text})
}

// Pause freezes the CSS animation and banks the time left before completion.
func (a *AnimatedText) Pause() {
	if !a.pause() {
		return
	}
	a.text.SetStyle("animation-play-state", "paused")
	if !a.settings.Loop {
		a.remaining -= a.h.sched.Now().Sub(a.startedAt)
		if a.remaining < 0 {
			a.remaining = 0
		}
	}
}

func (a *AnimatedText) Resume() {
	if !a.resume() {
		return
	}
	a.text.SetStyle("animation-play-state", "running")
	if !a.settings.Loop {
		a.startedAt = a.h.sched.Now()
		a.schedule(a.remaining, a.complete)
	}
}

func (a *AnimatedText) Stop()    { a.stop() }
func (a *AnimatedText) Destroy() { a.destroy() }

func (a *AnimatedText) Snapshot() Snapshot {
	snap := a.snapshot(a.text, a.settings.Text, 0)
	snap.Effect = a.effect
	return snap
}
