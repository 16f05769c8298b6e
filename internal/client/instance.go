package client

import (
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/ulid/v2"
)

// State is an instance's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateStarted   State = "started"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateComplete  State = "complete"
	StateDestroyed State = "destroyed"
)

// Instance kinds.
const (
	KindTypewriter = "typewriter"
	KindSlogan     = "slogan"
	KindAnimated   = "animated"
)

// Instance is one element's animation.
type Instance interface {
	ID() string
	Kind() string
	Element() Element
	State() State
	// Start begins the animation. It is a no-op while the instance is
	// already started and not complete.
	Start()
	Pause()
	Resume()
	// Stop halts the animation where it is, without a completion event.
	Stop()
	// Destroy cancels pending work. The instance never touches the DOM again.
	Destroy()
	// Errors lists initialization failures. An instance with errors never starts.
	Errors() []error
	// PendingTimers is the number of scheduled callbacks the instance owns.
	PendingTimers() int
	Snapshot() Snapshot
}

// Snapshot is a read-only view of an instance.
type Snapshot struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Effect    string   `json:"effect,omitempty"`
	State     State    `json:"state"`
	Text      string   `json:"text"`
	Displayed string   `json:"displayed"`
	Position  int      `json:"position"`
	Errors    []string `json:"errors,omitempty"`
}

// host is what instances share with their controller.
type host struct {
	sched         Scheduler
	logger        log.Logger
	defaults      Defaults
	random        func() float64
	reducedMotion func() bool
	emit          func(Element, Event)
}

// base holds the state and timer bookkeeping every instance kind shares.
// At most one callback is pending per instance: schedule cancels the
// previous one, and a generation counter turns any callback that still
// fires after cancellation into a no-op.
type base struct {
	h       *host
	id      string
	kind    string
	el      Element
	state   State
	pending Handle
	gen     uint64
	errs    []error

	// resumeState is the state Pause interrupted.
	resumeState State
	onDestroy   func()
}

func newBase(h *host, kind string, el Element) base {
	id := el.ID()
	if id == "" {
		id = "shogun-anim-" + strings.ToLower(ulid.Make().String())
	}
	return base{h: h, id: id, kind: kind, el: el, state: StateIdle}
}

func (b *base) ID() string       { return b.id }
func (b *base) Kind() string     { return b.kind }
func (b *base) Element() Element { return b.el }
func (b *base) State() State     { return b.state }
func (b *base) Errors() []error  { return append([]error(nil), b.errs...) }
func (b *base) broken() bool     { return len(b.errs) > 0 }
func (b *base) destroyed() bool  { return b.state == StateDestroyed }
func (b *base) reduced() bool    { return b.h.reducedMotion != nil && b.h.reducedMotion() }
func (b *base) PendingTimers() int {
	if b.pending != nil {
		return 1
	}
	return 0
}

func (b *base) fail(err error) {
	b.errs = append(b.errs, err)
	level.Warn(b.h.logger).Log("msg", "animation init failed", "id", b.id, "kind", b.kind, "err", err)
}

// startable applies the re-entry guard shared by every Start.
func (b *base) startable() bool {
	if b.broken() {
		return false
	}
	switch b.state {
	case StateIdle, StateComplete:
		return true
	}
	return false
}

func (b *base) schedule(d time.Duration, fn func()) {
	b.cancel()
	b.gen++
	gen := b.gen
	b.pending = b.h.sched.Schedule(d, func() {
		if gen != b.gen || b.destroyed() {
			return
		}
		b.pending = nil
		fn()
	})
}

func (b *base) cancel() {
	b.gen++
	if b.pending != nil {
		b.pending.Cancel()
		b.pending = nil
	}
}

// pause records the interrupted state. It reports false when there is
// nothing to pause.
func (b *base) pause() bool {
	switch b.state {
	case StateStarted, StateRunning:
	default:
		return false
	}
	b.cancel()
	b.resumeState = b.state
	b.state = StatePaused
	return true
}

func (b *base) resume() bool {
	if b.state != StatePaused {
		return false
	}
	b.state = b.resumeState
	return true
}

func (b *base) stop() {
	if b.destroyed() {
		return
	}
	b.cancel()
	if b.state != StateIdle {
		b.state = StateComplete
	}
}

func (b *base) destroy() {
	if b.destroyed() {
		return
	}
	b.cancel()
	b.state = StateDestroyed
	if b.onDestroy != nil {
		b.onDestroy()
	}
}

func (b *base) emit(ev Event) {
	if b.h.emit != nil {
		b.h.emit(b.el, ev)
	}
}

func (b *base) snapshot(text Element, target string, position int) Snapshot {
	s := Snapshot{ID: b.id, Kind: b.kind, State: b.state, Text: target, Position: position}
	if text != nil {
		s.Displayed = text.Text()
	}
	for _, err := range b.errs {
		s.Errors = append(s.Errors, err.Error())
	}
	return s
}
