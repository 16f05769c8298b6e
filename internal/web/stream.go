package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/client"
	"github.com/hpungsan/shogun/internal/errors"
)

const (
	// streamWriteWait bounds how long a frame write may block.
	streamWriteWait = 5 * time.Second
	// streamMaxDuration ends looping previews that nobody closes.
	streamMaxDuration = 5 * time.Minute
)

// streamSettings are the query parameters forwarded to the element as data-* attributes.
var streamSettings = []string{"speed", "delay", "delete-speed", "pause-end", "pause-start", "loop", "preserve-cursor", "direction"}

// streamOptions maps the stream query onto a played element.
func (h *Handlers) streamOptions(r *http.Request) (client.PlayOptions, error) {
	q := r.URL.Query()
	kind := q.Get("kind")
	switch kind {
	case "":
		kind = client.KindTypewriter
	case client.KindTypewriter, client.KindSlogan, client.KindAnimated:
	default:
		return client.PlayOptions{}, errors.NewInvalidRequest("unknown kind: " + kind)
	}

	text := animation.CleanText(q.Get("text"))
	if text == "" {
		text = animation.DefaultText
	}

	opts := client.OptionsFromConfig(h.env.Config)
	opts.Logger = h.logger
	opts.ReducedMotion = animation.ParseBool(q.Get("reduced_motion"))

	attrs := make(map[string]string)
	for _, name := range streamSettings {
		if v := q.Get(name); v != "" {
			attrs["data-"+name] = animation.SanitizeText(v)
		}
	}

	return client.PlayOptions{
		Kind:    kind,
		Effect:  animation.SanitizeText(q.Get("effect")),
		Text:    text,
		Cursor:  animation.SanitizeText(q.Get("cursor")),
		Attrs:   attrs,
		Options: opts,
	}, nil
}

// HandleStream handles GET /preview/stream: it plays one animation on the
// server and streams every frame and completion event as JSON messages.
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	opts, err := h.streamOptions(r)
	if err != nil {
		renderError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		level.Warn(h.logger).Log("msg", "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	if m := h.env.Metrics; m != nil {
		m.ActiveStreams.Inc()
		defer m.ActiveStreams.Dec()
	}

	ctx, cancel := context.WithTimeout(r.Context(), streamMaxDuration)
	defer cancel()

	// Reading is required to process control frames; any read error means
	// the peer is gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = client.Play(ctx, opts, func(f client.Frame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(f)
	})

	code, reason := websocket.CloseNormalClosure, "complete"
	switch {
	case err == nil:
	case ctx.Err() != nil:
		reason = "closed"
	default:
		level.Warn(h.logger).Log("msg", "preview stream failed", "err", err)
		code, reason = websocket.CloseInternalServerErr, "stream failed"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}
