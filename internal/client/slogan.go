package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Slogan reveal effects.
const (
	EffectFade       = "fade"
	EffectSlide      = "slide"
	EffectBounce     = "bounce"
	EffectTypewriter = "typewriter"
)

// ClassSloganText marks a slogan's text node.
const ClassSloganText = "slogan-text"

// FrameInterval is the step between reveal frames.
const FrameInterval = 16 * time.Millisecond

// slideOffset is the starting vertical offset of a slide, in pixels.
const slideOffset = 20

// Slogan reveals its text with an eased fade, slide or bounce. The
// typewriter effect hands the element to a Typewriter.
type Slogan struct {
	base
	effect   string
	settings Settings
	text     Element
	delegate *Typewriter

	tweens []*gween.Tween
	apply  func(vals []float32)
	last   time.Time
}

func newSlogan(h *host, el Element) *Slogan {
	s := &Slogan{base: newBase(h, KindSlogan, el)}
	s.text = el.Find(ClassSloganText)
	if s.text == nil {
		s.text = el.Find(ClassTypewriterText)
	}
	if s.text == nil {
		s.fail(errors.Errorf("missing .%s element", ClassSloganText))
		return s
	}

	s.effect = el.Attr("data-animation")
	switch s.effect {
	case EffectFade, EffectSlide, EffectBounce, EffectTypewriter:
	default:
		s.effect = EffectFade
	}

	if s.effect == EffectTypewriter {
		s.delegate = newTypewriter(h, el)
		s.delegate.id = s.id
		s.errs = append(s.errs, s.delegate.errs...)
		return s
	}

	s.settings = ParseEffectSettings(el, s.text, h.defaults)
	s.text.SetStyle("opacity", "0")
	switch s.effect {
	case EffectSlide:
		s.text.SetStyle("transform", "translateY("+num(slideOffset)+"px)")
	case EffectBounce:
		s.text.SetStyle("transform", "scale(0.8)")
	}
	return s
}

// Effect is the reveal effect in use.
func (s *Slogan) Effect() string { return s.effect }

func (s *Slogan) State() State {
	if s.delegate != nil && s.state != StateDestroyed {
		return s.delegate.State()
	}
	return s.state
}

func (s *Slogan) PendingTimers() int {
	if s.delegate != nil {
		return s.delegate.PendingTimers()
	}
	return s.base.PendingTimers()
}

func (s *Slogan) Start() {
	if s.delegate != nil {
		if !s.broken() {
			s.delegate.Start()
		}
		return
	}
	if !s.startable() {
		return
	}

	if s.reduced() {
		s.text.SetStyle("opacity", "1")
		s.text.SetStyle("transform", "none")
		s.state = StateRunning
		s.complete()
		return
	}

	s.buildTweens()
	s.state = StateRunning
	s.last = s.h.sched.Now()
	s.schedule(FrameInterval, s.frame)
}

func (s *Slogan) buildTweens() {
	d := float32(s.settings.Speed.Seconds())
	opacity := gween.New(0, 1, d, ease.InOutQuad)
	switch s.effect {
	case EffectSlide:
		s.tweens = []*gween.Tween{opacity, gween.New(slideOffset, 0, d, ease.OutCubic)}
		s.apply = func(v []float32) {
			s.text.SetStyle("opacity", num(v[0]))
			s.text.SetStyle("transform", "translateY("+num(v[1])+"px)")
		}
	case EffectBounce:
		s.tweens = []*gween.Tween{opacity, gween.New(0.8, 1, d, ease.OutBounce)}
		s.apply = func(v []float32) {
			s.text.SetStyle("opacity", num(v[0]))
			s.text.SetStyle("transform", "scale("+num(v[1])+")")
		}
	default:
		s.tweens = []*gween.Tween{opacity}
		s.apply = func(v []float32) {
			s.text.SetStyle("opacity", num(v[0]))
		}
	}
}

func (s *Slogan) frame() {
	now := s.h.sched.Now()
	dt := float32(now.Sub(s.last).Seconds())
	s.last = now

	vals := make([]float32, len(s.tweens))
	done := true
	for i, tw := range s.tweens {
		v, finished := tw.Update(dt)
		vals[i] = v
		done = done && finished
	}
	s.apply(vals)

	if done {
		s.complete()
		return
	}
	s.schedule(FrameInterval, s.frame)
}

func (s *Slogan) complete() {
	s.state = StateComplete
	s.emit(Event{Name: EventSloganComplete, ID: s.id, Type: s.effect, Text: s.settings.Text})
}

func (s *Slogan) Pause() {
	if s.delegate != nil {
		s.delegate.Pause()
		return
	}
	s.pause()
}

// Resume continues the tweens from where they stopped; paused time does
// not count towards the reveal.
func (s *Slogan) Resume() {
	if s.delegate != nil {
		s.delegate.Resume()
		return
	}
	if !s.resume() {
		return
	}
	s.last = s.h.sched.Now()
	s.schedule(FrameInterval, s.frame)
}

func (s *Slogan) Stop() {
	if s.delegate != nil {
		s.delegate.Stop()
		return
	}
	s.stop()
}

func (s *Slogan) Destroy() {
	if s.delegate != nil {
		s.delegate.Destroy()
	}
	s.destroy()
}

func (s *Slogan) Snapshot() Snapshot {
	var snap Snapshot
	if s.delegate != nil {
		snap = s.delegate.Snapshot()
		snap.Kind = s.kind
	} else {
		snap = s.snapshot(s.text, s.settings.Text, 0)
	}
	snap.State = s.State()
	snap.Effect = s.effect
	return snap
}

// num formats a style value with at most three decimals.
func num(v float32) string {
	out := strconv.FormatFloat(float64(v), 'f', 3, 32)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "-0" {
		return "0"
	}
	return out
}
