// Package client is the page-side lifecycle controller: it discovers
// animatable elements, owns one animation instance per element and drives
// every instance from a single Scheduler.
package client

import (
	"math/rand/v2"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hpungsan/shogun/internal/config"
)

// Version is reported by the initialized event.
const Version = "3.1.0"

// RescanDelay is how long after a mutation the controller rescans, so a
// burst of inserted nodes costs one scan.
const RescanDelay = 100 * time.Millisecond

// Container classes the controller discovers.
const (
	ClassTypewriter   = "shogun-typewriter"
	ClassSlogan       = "shogun-slogan"
	ClassAnimatedText = "shogun-animated-text"
)

// Options configure a Controller.
type Options struct {
	Defaults Defaults
	// Accessibility honors the reduced-motion preference.
	Accessibility bool
	// LazyStart defers starting an instance until Intersect reports it
	// visible. Without it instances start as soon as they are created.
	LazyStart bool
	// ReducedMotion is the initial reduced-motion preference.
	ReducedMotion bool
	// Random returns typing jitter input in [0, 1). Nil uses math/rand.
	Random func() float64
	Logger log.Logger
}

// OptionsFromConfig maps the client settings of cfg onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Defaults: Defaults{
			Speed:  cfg.DefaultSpeed,
			Cursor: cfg.DefaultCursor,
			Loop:   cfg.DefaultLoop,
		},
		Accessibility: cfg.AccessibilityEnabled(),
		LazyStart:     cfg.LazyStartEnabled(),
	}
}

// Controller maps elements to instances. It is not safe for concurrent
// use: call it only from the scheduler's goroutine.
type Controller struct {
	sched  Scheduler
	opts   Options
	logger log.Logger
	host   *host
	bus    bus

	instances map[Element]Instance
	order     []Instance
	// observed elements wait for Intersect before starting.
	observed map[Element]bool
	// offscreen are observed elements outside the viewport.
	offscreen map[Element]bool
	// hiddenPaused resume when they re-enter the viewport.
	hiddenPaused map[Element]bool

	initialized   bool
	reducedMotion bool
	pendingAdded  []Element
	rescan        Handle
}

// Stats summarizes the controller.
type Stats struct {
	Typewriters          int  `json:"typewriters"`
	Slogans              int  `json:"slogans"`
	Animated             int  `json:"animated"`
	Total                int  `json:"total"`
	Active               int  `json:"active"`
	IsInitialized        bool `json:"isInitialized"`
	PrefersReducedMotion bool `json:"prefersReducedMotion"`
}

// NewController returns a controller that schedules on sched.
func NewController(sched Scheduler, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Random == nil {
		opts.Random = rand.Float64
	}
	c := &Controller{
		sched:         sched,
		opts:          opts,
		logger:        opts.Logger,
		instances:     make(map[Element]Instance),
		observed:      make(map[Element]bool),
		offscreen:     make(map[Element]bool),
		hiddenPaused:  make(map[Element]bool),
		reducedMotion: opts.ReducedMotion,
	}
	c.host = &host{
		sched:         sched,
		logger:        opts.Logger,
		defaults:      opts.Defaults,
		random:        opts.Random,
		reducedMotion: c.PrefersReducedMotion,
		emit:          c.emit,
	}
	return c
}

// Init scans root and, the first time, emits the initialized event.
// It returns the number of instances created.
func (c *Controller) Init(root Element) int {
	n := c.Scan(root)
	if !c.initialized {
		c.initialized = true
		c.bus.emit(Event{
			Name:                 EventInitialized,
			Version:              Version,
			AnimationsCount:      len(c.order),
			PrefersReducedMotion: c.PrefersReducedMotion(),
		})
		level.Debug(c.logger).Log("msg", "controller initialized", "animations", len(c.order), "reduced_motion", c.PrefersReducedMotion())
	}
	return n
}

// Scan creates instances for every animatable element in the tree rooted
// at root that does not have one yet.
func (c *Controller) Scan(root Element) int {
	n := 0
	walk(root, func(el Element) {
		if _, ok := c.instances[el]; ok || !Animatable(el) {
			return
		}
		if c.Create(el) != nil {
			n++
		}
	})
	return n
}

func walk(el Element, fn func(Element)) {
	fn(el)
	for _, child := range el.Children() {
		walk(child, fn)
	}
}

// Animatable reports whether the controller would create an instance for el.
func Animatable(el Element) bool {
	return el.HasClass(ClassTypewriter) ||
		el.HasClass(ClassSlogan) ||
		el.HasClass(ClassAnimatedText) ||
		el.HasAttr("data-text")
}

// Create returns the instance for el, creating and registering it if el
// has none. It returns nil for elements that are not animatable.
func (c *Controller) Create(el Element) Instance {
	if inst, ok := c.instances[el]; ok {
		return inst
	}

	var inst Instance
	switch {
	case el.HasClass(ClassTypewriter):
		inst = newTypewriter(c.host, el)
	case el.HasClass(ClassSlogan):
		inst = newSlogan(c.host, el)
	case el.HasClass(ClassAnimatedText):
		inst = newAnimatedText(c.host, el)
	case el.HasAttr("data-text"):
		inst = newTypewriter(c.host, el)
	default:
		return nil
	}

	c.instances[el] = inst
	c.order = append(c.order, inst)
	inst.(destroyHooker).hookDestroy(func() { c.unregister(el) })
	el.SetAttr("data-shogun-id", inst.ID())
	level.Debug(c.logger).Log("msg", "animation created", "id", inst.ID(), "kind", inst.Kind())

	if len(inst.Errors()) > 0 {
		return inst
	}
	switch {
	case c.PrefersReducedMotion():
		inst.Start()
	case c.opts.LazyStart:
		c.observed[el] = true
	case el.Attr("data-auto-start") != "false":
		inst.Start()
	}
	return inst
}

type destroyHooker interface {
	hookDestroy(fn func())
}

func (b *base) hookDestroy(fn func()) { b.onDestroy = fn }

func (c *Controller) unregister(el Element) {
	inst, ok := c.instances[el]
	if !ok {
		return
	}
	delete(c.instances, el)
	delete(c.observed, el)
	delete(c.offscreen, el)
	delete(c.hiddenPaused, el)
	for i, o := range c.order {
		if o == inst {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Intersect reports a viewport change for el. Entering starts an instance
// that is waiting for it, or resumes one that leaving paused; leaving
// pauses any instance that is still animating, a looping typewriter
// holding its text included.
func (c *Controller) Intersect(el Element, visible bool) {
	inst, ok := c.instances[el]
	if !ok || !c.observed[el] {
		return
	}
	if !visible {
		c.offscreen[el] = true
		switch inst.State() {
		case StateIdle, StatePaused, StateDestroyed:
			return
		}
		inst.Pause()
		if inst.State() == StatePaused {
			c.hiddenPaused[el] = true
		}
		return
	}

	delete(c.offscreen, el)
	switch inst.State() {
	case StateIdle:
		if el.Attr("data-auto-start") != "false" {
			inst.Start()
		}
	case StatePaused:
		if c.hiddenPaused[el] {
			delete(c.hiddenPaused, el)
			inst.Resume()
		}
	}
}

// HandleMutation reports inserted subtrees. If any contains an element
// without an instance, a rescan of the inserted nodes runs after
// RescanDelay.
func (c *Controller) HandleMutation(added ...Element) {
	found := false
	for _, root := range added {
		walk(root, func(el Element) {
			if _, ok := c.instances[el]; !ok && Animatable(el) {
				found = true
			}
		})
	}
	if !found {
		return
	}
	c.pendingAdded = append(c.pendingAdded, added...)
	if c.rescan != nil {
		return
	}
	c.rescan = c.sched.Schedule(RescanDelay, func() {
		c.rescan = nil
		pending := c.pendingAdded
		c.pendingAdded = nil
		n := 0
		for _, root := range pending {
			n += c.Scan(root)
		}
		level.Debug(c.logger).Log("msg", "rescanned inserted content", "created", n)
	})
}

// SetVisibility follows the document's visibility: hidden pauses every
// instance, visible resumes them.
func (c *Controller) SetVisibility(hidden bool) {
	if hidden {
		c.PauseAll()
		return
	}
	c.ResumeAll()
}

// Blur pauses every instance when the window loses focus.
func (c *Controller) Blur() { c.PauseAll() }

// Focus resumes every instance when the window regains focus.
func (c *Controller) Focus() { c.ResumeAll() }

// SetReducedMotion updates the preference. Turning it on pauses every
// running instance; instances started afterwards render statically.
func (c *Controller) SetReducedMotion(on bool) {
	c.reducedMotion = on
	level.Debug(c.logger).Log("msg", "reduced motion changed", "on", on)
	if c.PrefersReducedMotion() {
		c.PauseAll()
	}
}

// PrefersReducedMotion reports whether instances must skip animation.
func (c *Controller) PrefersReducedMotion() bool {
	return c.opts.Accessibility && c.reducedMotion
}

// TogglePause pauses a running instance or resumes a paused one.
func (c *Controller) TogglePause(el Element) {
	inst, ok := c.instances[el]
	if !ok {
		return
	}
	if inst.State() == StatePaused {
		inst.Resume()
		return
	}
	inst.Pause()
}

// KeyPress handles a key on a focused element: Space and Enter toggle
// pause. It reports whether the key was handled.
func (c *Controller) KeyPress(el Element, key string) bool {
	switch key {
	case " ", "Space", "Enter":
		if _, ok := c.instances[el]; !ok {
			return false
		}
		c.TogglePause(el)
		return true
	}
	return false
}

// MouseEnter pauses the hovered element's instance.
func (c *Controller) MouseEnter(el Element) {
	if inst, ok := c.instances[el]; ok {
		inst.Pause()
	}
}

// MouseLeave resumes the element's instance.
func (c *Controller) MouseLeave(el Element) {
	if inst, ok := c.instances[el]; ok {
		inst.Resume()
	}
}

func (c *Controller) each(fn func(Instance)) {
	for _, inst := range append([]Instance(nil), c.order...) {
		fn(inst)
	}
}

// PauseAll pauses every started instance.
func (c *Controller) PauseAll() { c.each(Instance.Pause) }

// ResumeAll resumes every paused instance that is on screen. Paused
// instances outside the viewport resume when Intersect reports them
// visible again.
func (c *Controller) ResumeAll() {
	c.each(func(inst Instance) {
		el := inst.Element()
		if c.offscreen[el] {
			if inst.State() == StatePaused {
				c.hiddenPaused[el] = true
			}
			return
		}
		inst.Resume()
	})
}

// StopAll halts every instance in place.
func (c *Controller) StopAll() { c.each(Instance.Stop) }

// Destroy tears down el's instance. It reports whether there was one.
func (c *Controller) Destroy(el Element) bool {
	inst, ok := c.instances[el]
	if ok {
		inst.Destroy()
	}
	return ok
}

// DestroyAll tears down every instance and cancels the pending rescan.
// It is idempotent and safe to call during page unload.
func (c *Controller) DestroyAll() {
	if c.rescan != nil {
		c.rescan.Cancel()
		c.rescan = nil
	}
	c.pendingAdded = nil
	c.each(Instance.Destroy)
	level.Debug(c.logger).Log("msg", "destroyed all animations")
}

// Get returns el's instance.
func (c *Controller) Get(el Element) (Instance, bool) {
	inst, ok := c.instances[el]
	return inst, ok
}

// Instances returns the live instances in creation order.
func (c *Controller) Instances() []Instance {
	return append([]Instance(nil), c.order...)
}

// On subscribes fn to events named name; the "shogun:" prefix is optional.
func (c *Controller) On(name string, fn Listener) Subscription {
	return c.bus.on(name, fn)
}

// Off removes a subscription.
func (c *Controller) Off(sub Subscription) {
	c.bus.off(sub)
}

func (c *Controller) emit(el Element, ev Event) {
	el.Dispatch(ev)
	c.bus.emit(ev)
	level.Debug(c.logger).Log("msg", "event", "name", ev.Name, "id", ev.ID)
}

// Stats counts instances by kind and state.
func (c *Controller) Stats() Stats {
	s := Stats{
		Total:                len(c.order),
		IsInitialized:        c.initialized,
		PrefersReducedMotion: c.PrefersReducedMotion(),
	}
	for _, inst := range c.order {
		switch inst.Kind() {
		case KindTypewriter:
			s.Typewriters++
		case KindSlogan:
			s.Slogans++
		case KindAnimated:
			s.Animated++
		}
		switch inst.State() {
		case StateStarted, StateRunning:
			s.Active++
		}
	}
	return s
}
