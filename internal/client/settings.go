package client

import (
	"time"

	"github.com/hpungsan/shogun/internal/animation"
)

// SampleText is shown when an element carries no text at all.
const SampleText = "Sample text..."

// Defaults are the page-wide fallbacks for settings an element leaves out.
type Defaults struct {
	Speed  int
	Cursor string
	Loop   bool
}

// DefaultDefaults matches the stock page configuration.
func DefaultDefaults() Defaults {
	return Defaults{Speed: 100, Cursor: "|"}
}

// Settings are one instance's resolved timing and display options.
type Settings struct {
	Text           string
	Speed          time.Duration
	Delay          time.Duration
	DeleteSpeed    time.Duration
	PauseEnd       time.Duration
	PauseStart     time.Duration
	Loop           bool
	Cursor         string
	PreserveCursor bool
	CursorBlink    bool
	AutoStart      bool
}

// Clamped integer settings, in milliseconds. The bounds keep a hostile
// data attribute from freezing or flooding the scheduler.
var (
	speedSpec       = animation.IntParam("speed", 100, 10, 1000, "", "")
	delaySpec       = animation.IntParam("delay", 0, 0, 10000, "", "")
	deleteSpeedSpec = animation.IntParam("delete-speed", 50, 10, 500, "", "")
	pauseEndSpec    = animation.IntParam("pause-end", 2000, 500, 10000, "", "")
	pauseStartSpec  = animation.IntParam("pause-start", 1000, 100, 5000, "", "")
)

// ParseSettings reads data-* attributes from el, clamping each numeric
// field independently. Missing or unparsable values take their default.
func ParseSettings(el Element, textEl Element, d Defaults) Settings {
	if d.Speed == 0 {
		d.Speed = 100
	}
	if d.Cursor == "" {
		d.Cursor = "|"
	}

	speed := speedSpec
	speed.Default = animation.IntValue(d.Speed)

	s := Settings{
		Text:           el.Attr("data-text"),
		Speed:          millis(el, speed),
		Delay:          millis(el, delaySpec),
		DeleteSpeed:    millis(el, deleteSpeedSpec),
		PauseEnd:       millis(el, pauseEndSpec),
		PauseStart:     millis(el, pauseStartSpec),
		Loop:           d.Loop,
		Cursor:         el.Attr("data-cursor"),
		PreserveCursor: el.Attr("data-preserve-cursor") == "true",
		CursorBlink:    el.Attr("data-cursor-blink") != "false",
		AutoStart:      el.Attr("data-auto-start") != "false",
	}
	if el.HasAttr("data-loop") {
		s.Loop = animation.ParseBool(el.Attr("data-loop"))
	}
	if s.Cursor == "" {
		s.Cursor = d.Cursor
	}
	if s.Text == "" && textEl != nil {
		s.Text = textEl.Text()
	}
	if s.Text == "" {
		s.Text = SampleText
	}
	return s
}

// effectSpeedMax bounds reveal durations, which run far longer than a
// per-character typing step.
const effectSpeedMax = 10000

// ParseEffectSettings is ParseSettings for slogan and animated text
// reveals, whose data-speed is a whole-reveal duration.
func ParseEffectSettings(el Element, textEl Element, d Defaults) Settings {
	s := ParseSettings(el, textEl, d)
	spec := speedSpec
	spec.Default = animation.IntValue(s.Speed.Milliseconds())
	limit := effectSpeedMax
	spec.Max = &limit
	s.Speed = millis(el, spec)
	return s
}

func millis(el Element, spec animation.ParameterSpec) time.Duration {
	attr := "data-" + spec.Name
	var v animation.Value = spec.Default
	if el.HasAttr(attr) {
		v = animation.Sanitize(spec, el.Attr(attr))
	}
	return time.Duration(v.(animation.IntValue)) * time.Millisecond
}
