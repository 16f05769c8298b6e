package client

import (
	"time"

	"github.com/pkg/errors"
)

// Typewriter scaffold classes.
const (
	ClassTypewriterText   = "typewriter-text"
	ClassTypewriterCursor = "typewriter-cursor"
)

// CursorGrace is how long the cursor stays visible after a non-looping
// typewriter completes.
const CursorGrace = 1000 * time.Millisecond

// MinCharDelay floors every per-character delay.
const MinCharDelay = 10 * time.Millisecond

type phase int

const (
	phaseNone phase = iota
	phaseDelay
	phaseTyping
	// phaseHold waits PauseEnd after a looping typewriter completes.
	phaseHold
	phaseDeleting
	// phaseRest waits PauseStart before retyping.
	phaseRest
	phaseCursor
)

// Typewriter reveals its text one character at a time.
type Typewriter struct {
	base
	settings Settings
	text     Element
	cursor   Element
	runes    []rune
	position int
	phase    phase
}

func newTypewriter(h *host, el Element) *Typewriter {
	t := &Typewriter{base: newBase(h, KindTypewriter, el)}
	t.text = el.Find(ClassTypewriterText)
	t.cursor = el.Find(ClassTypewriterCursor)
	if t.text == nil {
		t.fail(errors.Errorf("missing .%s element", ClassTypewriterText))
		return t
	}
	if t.cursor == nil {
		t.fail(errors.Errorf("missing .%s element", ClassTypewriterCursor))
		return t
	}

	t.settings = ParseSettings(el, t.text, h.defaults)
	t.runes = []rune(t.settings.Text)

	t.text.SetText("")
	t.cursor.SetText(t.settings.Cursor)
	t.cursor.SetStyle("opacity", "1")
	if !t.settings.CursorBlink {
		t.cursor.SetStyle("animation", "none")
	}

	t.text.SetAttr("role", "text")
	t.text.SetAttr("aria-label", t.settings.Text)
	t.cursor.SetAttr("aria-hidden", "true")
	el.SetAttr("aria-live", "polite")
	el.SetAttr("tabindex", "0")
	return t
}

// Settings returns the resolved settings.
func (t *Typewriter) Settings() Settings { return t.settings }

// Position is the number of characters currently shown.
func (t *Typewriter) Position() int { return t.position }

func (t *Typewriter) Start() {
	if !t.startable() {
		return
	}
	if t.state == StateComplete {
		t.reset()
	}

	if t.reduced() {
		t.position = len(t.runes)
		t.text.SetText(t.settings.Text)
		t.cursor.SetStyle("animation", "none")
		t.cursor.SetStyle("display", "none")
		t.state = StateRunning
		t.complete(false)
		return
	}

	t.state = StateStarted
	if t.settings.Delay > 0 {
		t.phase = phaseDelay
		t.schedule(t.settings.Delay, t.beginTyping)
		return
	}
	t.beginTyping()
}

func (t *Typewriter) beginTyping() {
	t.state = StateRunning
	t.phase = phaseTyping
	t.typeNext()
}

func (t *Typewriter) typeNext() {
	if t.position >= len(t.runes) {
		t.complete(t.settings.Loop)
		return
	}
	ch := t.runes[t.position]
	t.position++
	t.text.SetText(string(t.runes[:t.position]))
	t.schedule(t.CharDelay(ch), t.typeNext)
}

// CharDelay is the pause after typing ch: sentence punctuation triples the
// base speed, clause punctuation doubles it, a space halves it, then up to
// ±10% jitter is applied.
func (t *Typewriter) CharDelay(ch rune) time.Duration {
	d := float64(t.settings.Speed)
	switch ch {
	case '.', '!', '?':
		d *= 3
	case ',', ';', ':':
		d *= 2
	case ' ':
		d *= 0.5
	}
	if t.h.random != nil {
		d += (t.h.random() - 0.5) * d * 0.2
	}
	if d < float64(MinCharDelay) {
		return MinCharDelay
	}
	return time.Duration(d)
}

func (t *Typewriter) complete(loop bool) {
	t.state = StateComplete
	t.phase = phaseNone
	t.emit(Event{Name: EventTypewriterComplete, ID: t.id, Text: t.settings.Text})
	if t.destroyed() || t.state != StateComplete {
		// A listener tore the instance down or restarted it.
		return
	}

	switch {
	case loop && !t.reduced():
		t.phase = phaseHold
		t.schedule(t.settings.PauseEnd, t.beginDeleting)
	case !loop && !t.settings.PreserveCursor && !t.reduced():
		t.phase = phaseCursor
		t.schedule(CursorGrace, func() {
			t.phase = phaseNone
			t.cursor.SetStyle("opacity", "0")
		})
	}
}

func (t *Typewriter) beginDeleting() {
	t.state = StateRunning
	t.phase = phaseDeleting
	t.deleteNext()
}

func (t *Typewriter) deleteNext() {
	if t.position == 0 {
		t.phase = phaseRest
		t.schedule(t.settings.PauseStart, t.beginTyping)
		return
	}
	t.position--
	t.text.SetText(string(t.runes[:t.position]))
	t.schedule(t.settings.DeleteSpeed, t.deleteNext)
}

// Pause stops scheduling. A looping typewriter may also be paused while it
// holds its completed text.
func (t *Typewriter) Pause() {
	if t.state == StateComplete && t.phase == phaseHold {
		t.cancel()
		t.resumeState = StateComplete
		t.state = StatePaused
		return
	}
	t.pause()
}

// Resume continues from the current character. Waits that were cut short
// restart in full.
func (t *Typewriter) Resume() {
	if !t.resume() {
		return
	}
	switch t.phase {
	case phaseDelay:
		t.beginTyping()
	case phaseTyping:
		t.typeNext()
	case phaseHold:
		t.schedule(t.settings.PauseEnd, t.beginDeleting)
	case phaseDeleting:
		t.deleteNext()
	case phaseRest:
		t.schedule(t.settings.PauseStart, t.beginTyping)
	}
}

func (t *Typewriter) Stop() {
	t.stop()
	t.phase = phaseNone
}

func (t *Typewriter) Destroy() {
	t.destroy()
	t.phase = phaseNone
}

// UpdateText swaps the text and restarts a typewriter that had started.
func (t *Typewriter) UpdateText(text string) {
	if t.broken() || t.destroyed() {
		return
	}
	t.settings.Text = text
	t.runes = []rune(text)
	t.text.SetAttr("aria-label", text)

	running := t.state != StateIdle
	t.reset()
	if running {
		t.state = StateIdle
		t.Start()
	}
}

func (t *Typewriter) reset() {
	t.cancel()
	t.position = 0
	t.phase = phaseNone
	t.text.SetText("")
	t.cursor.SetText(t.settings.Cursor)
	t.cursor.SetStyle("display", "")
	t.cursor.SetStyle("opacity", "1")
}

func (t *Typewriter) Snapshot() Snapshot {
	return t.snapshot(t.text, t.settings.Text, t.position)
}
