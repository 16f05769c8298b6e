package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Frame types.
const (
	FrameUpdate = "frame"
	FrameEvent  = "event"
)

// Frame is one observable step of a played animation.
type Frame struct {
	Type      string   `json:"type"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Snapshot  Snapshot `json:"snapshot"`
	Opacity   string   `json:"opacity,omitempty"`
	Transform string   `json:"transform,omitempty"`
	Event     *Event   `json:"event,omitempty"`
}

// PlayOptions describe the single element Play animates.
type PlayOptions struct {
	// Kind is KindTypewriter, KindSlogan or KindAnimated.
	Kind   string
	Effect string
	Text   string
	Cursor string
	// Attrs are extra attributes such as data-speed or data-loop.
	Attrs   map[string]string
	Options Options
}

// Element builds the scaffold for o.
func (o PlayOptions) Element() (*FakeElement, error) {
	var el *FakeElement
	switch o.Kind {
	case KindTypewriter, "":
		el = NewTypewriterElement(o.Text, o.Cursor)
	case KindSlogan:
		el = NewSloganElement(o.Effect, o.Text)
	case KindAnimated:
		el = NewAnimatedTextElement(o.Effect, o.Text)
	default:
		return nil, errors.Errorf("unknown kind %q", o.Kind)
	}
	for k, v := range o.Attrs {
		el.With(k, v)
	}
	if o.Cursor != "" && o.Kind == KindSlogan {
		el.With("data-cursor", o.Cursor)
	}
	return el, nil
}

// frameBuffer bounds how far the animation may run ahead of the consumer.
const frameBuffer = 64

// Play animates one element on its own Loop and calls fn for every visible
// change and every completion event. It returns when ctx is done, when fn
// fails, or after the completion event of an animation that does not loop.
// fn runs on the caller's goroutine.
//
// A completion is always delivered as one FrameEvent carrying the final
// snapshot; pending changes fold into it instead of preceding it as a
// FrameUpdate. A reduced-motion run therefore yields exactly one frame.
func Play(ctx context.Context, opts PlayOptions, fn func(Frame) error) error {
	el, err := opts.Element()
	if err != nil {
		return err
	}
	// Play owns its element, so the observer has nothing to wait for.
	opts.Options.LazyStart = false
	looping := ParseSettings(el, el, opts.Options.Defaults).Loop

	loop := NewLoop()
	defer loop.Close()

	frames := make(chan Frame, frameBuffer)
	stop := make(chan struct{})
	send := func(f Frame) bool {
		select {
		case frames <- f:
			return true
		case <-stop:
			return false
		}
	}

	var (
		ctrl    *Controller
		inst    Instance
		started   = time.Now()
		dirty     bool
		completed bool
	)
	// A reduced-motion start completes inside Create, before it returns.
	current := func() Instance {
		if inst == nil && ctrl != nil {
			inst, _ = ctrl.Get(el)
		}
		return inst
	}
	snapshot := func(typ string) Frame {
		f := Frame{
			Type:      typ,
			ElapsedMS: time.Since(started).Milliseconds(),
			Snapshot:  current().Snapshot(),
		}
		if node := textNode(el); node != nil {
			f.Opacity = node.Style("opacity")
			f.Transform = node.Style("transform")
		}
		return f
	}
	flush := func() {
		if !dirty || current() == nil {
			return
		}
		dirty = false
		send(snapshot(FrameUpdate))
	}

	var setupErr error
	loop.Call(func() {
		ctrl = NewController(loop, opts.Options)
		el.Watch(func(*FakeElement) {
			if !dirty {
				dirty = true
				loop.Do(flush)
			}
		})
		onComplete := func(ev Event) {
			if current() == nil {
				return
			}
			dirty = false
			completed = true
			f := snapshot(FrameEvent)
			f.Event = &ev
			send(f)
		}
		for _, name := range []string{EventTypewriterComplete, EventSloganComplete, EventAnimatedComplete} {
			ctrl.On(name, onComplete)
		}
		inst = ctrl.Create(el)
		if errs := inst.Errors(); len(errs) > 0 {
			setupErr = errs[0]
			return
		}
		if inst.State() == StateIdle {
			inst.Start()
		}
		if !completed {
			dirty = true
			flush()
		}
	})
	defer func() {
		close(stop)
		loop.Call(func() {
			if ctrl != nil {
				ctrl.DestroyAll()
			}
		})
	}()
	if setupErr != nil {
		return setupErr
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			if err := fn(f); err != nil {
				return err
			}
			if f.Type == FrameEvent && !looping {
				return nil
			}
		}
	}
}

func textNode(el Element) Element {
	for _, class := range []string{ClassTypewriterText, ClassSloganText, ClassAnimatedTextNode} {
		if node := el.Find(class); node != nil {
			return node
		}
	}
	return nil
}
