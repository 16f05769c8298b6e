package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ctx context.Context, opts PlayOptions) ([]Frame, error) {
	t.Helper()
	var frames []Frame
	err := Play(ctx, opts, func(f Frame) error {
		frames = append(frames, f)
		return nil
	})
	return frames, err
}

func TestPlay_TypewriterRunsToCompletion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames, err := collect(t, ctx, PlayOptions{
		Kind:  KindTypewriter,
		Text:  "Hi!",
		Attrs: map[string]string{"data-speed": "10"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, frames)

	last := frames[len(frames)-1]
	assert.Equal(t, FrameEvent, last.Type)
	require.NotNil(t, last.Event)
	assert.Equal(t, EventTypewriterComplete, last.Event.Name)
	assert.Equal(t, "Hi!", last.Snapshot.Displayed)

	for _, f := range frames {
		assert.True(t, strings.HasPrefix("Hi!", f.Snapshot.Displayed), f.Snapshot.Displayed)
	}
	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, len(frames[i].Snapshot.Displayed), len(frames[i-1].Snapshot.Displayed))
	}
}

func TestPlay_SloganReportsStyles(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames, err := collect(t, ctx, PlayOptions{
		Kind:   KindSlogan,
		Effect: EffectSlide,
		Text:   "Move",
		Attrs:  map[string]string{"data-speed": "50"},
	})
	require.NoError(t, err)

	last := frames[len(frames)-1]
	require.NotNil(t, last.Event)
	assert.Equal(t, EventSloganComplete, last.Event.Name)
	assert.Equal(t, "1", last.Opacity)
	assert.Equal(t, "translateY(0px)", last.Transform)
	assert.Equal(t, "0", frames[0].Opacity)
}

func TestPlay_ReducedMotionCompletesImmediately(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frames, err := collect(t, ctx, PlayOptions{
		Kind:    KindAnimated,
		Effect:  EffectFade,
		Text:    "Calm",
		Options: Options{Accessibility: true, ReducedMotion: true},
	})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, EventAnimatedComplete, frames[0].Event.Name)
	assert.Equal(t, StateComplete, frames[0].Snapshot.State)
}

func TestPlay_CompletionIsSingleEventFrame(t *testing.T) {
	tests := []struct {
		kind, effect, event string
	}{
		{KindTypewriter, "", EventTypewriterComplete},
		{KindSlogan, EffectBounce, EventSloganComplete},
		{KindAnimated, EffectSlide, EventAnimatedComplete},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			frames, err := collect(t, ctx, PlayOptions{
				Kind:    tt.kind,
				Effect:  tt.effect,
				Text:    "Still",
				Options: Options{Accessibility: true, ReducedMotion: true},
			})
			require.NoError(t, err)
			require.Len(t, frames, 1)
			assert.Equal(t, FrameEvent, frames[0].Type)
			require.NotNil(t, frames[0].Event)
			assert.Equal(t, tt.event, frames[0].Event.Name)
			assert.Equal(t, "Still", frames[0].Snapshot.Displayed)
		})
	}
}

func TestPlay_LoopRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := 0
	err := Play(ctx, PlayOptions{
		Kind: KindTypewriter,
		Text: "ab",
		Attrs: map[string]string{
			"data-speed":        "10",
			"data-delete-speed": "10",
			"data-pause-end":    "500",
			"data-pause-start":  "100",
			"data-loop":         "true",
		},
	}, func(f Frame) error {
		if f.Type == FrameEvent {
			events++
			if events == 2 {
				cancel()
			}
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, events)
}

func TestPlay_CallbackErrorStops(t *testing.T) {
	boom := assert.AnError
	err := Play(context.Background(), PlayOptions{Kind: KindTypewriter, Text: "long enough text"}, func(Frame) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPlay_UnknownKind(t *testing.T) {
	err := Play(context.Background(), PlayOptions{Kind: "marquee"}, func(Frame) error { return nil })
	assert.ErrorContains(t, err, `unknown kind "marquee"`)
}

func TestPlayOptions_Element(t *testing.T) {
	el, err := PlayOptions{Kind: KindSlogan, Effect: EffectBounce, Text: "x", Attrs: map[string]string{"data-speed": "300"}}.Element()
	require.NoError(t, err)
	assert.True(t, el.HasClass(ClassSlogan))
	assert.Equal(t, "300", el.Attr("data-speed"))
	assert.Equal(t, EffectBounce, el.Attr("data-animation"))
	assert.NotNil(t, el.Find(ClassSloganText))
}
