package web

import (
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/shogun/internal/cache"
	"github.com/hpungsan/shogun/internal/client"
	"github.com/hpungsan/shogun/internal/config"
	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/metrics"
	"github.com/hpungsan/shogun/internal/ops"
)

func setupTest(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	reg := prometheus.NewRegistry()
	env, err := ops.NewEnv(cfg, cache.NewMemoryStore(nil), metrics.New(reg), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(env, "test", reg))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decodeJSON(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out), body)
	return out
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	errObj, ok := decodeJSON(t, body)["error"].(map[string]any)
	require.True(t, ok, body)
	return errObj["code"].(string)
}

func TestHandleListAnimations(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "GET", srv.URL+APIPrefix+"/animations", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	out := decodeJSON(t, body)
	assert.EqualValues(t, 6, out["total"])
	assert.Len(t, out["animations"], 6)
	assert.Contains(t, out["categories"], "text")

	resp, body = do(t, "GET", srv.URL+APIPrefix+"/animations?category=visual", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeJSON(t, body)["total"])
}

func TestHandleGetAnimation(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "GET", srv.URL+APIPrefix+"/animations/neon", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON(t, body)
	assert.Equal(t, "neon", out["name"])
	assert.Equal(t, "ShogunAPI.initNeon", out["js_init"])

	resp, body = do(t, "GET", srv.URL+APIPrefix+"/animations/sparkle", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ANIMATION_NOT_FOUND", errorCode(t, body))
}

func TestHandleGenerateCSS(t *testing.T) {
	srv := setupTest(t, nil)
	url := srv.URL + APIPrefix + "/generate-css"
	body := `{"animation":"neon","parameters":{"intensity":999,"flicker":true}}`

	resp, first := do(t, "POST", url, "", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, first)
	one := decodeJSON(t, first)
	assert.Equal(t, false, one["cached"])
	assert.Contains(t, one["css"], "--glow-intensity: 50px;")
	assert.Equal(t, "ShogunAPI.initNeon", one["js_init"])

	_, second := do(t, "POST", url, "", body)
	two := decodeJSON(t, second)
	assert.Equal(t, true, two["cached"])
	assert.Equal(t, one["css"], two["css"])

	resp, out := do(t, "POST", url, "", `{"animation":"sparkle"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ANIMATION_NOT_FOUND", errorCode(t, out))

	resp, out = do(t, "POST", url, "", `{"animation":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, out))

	resp, out = do(t, "POST", url, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, out))
}

func TestEditorAuth(t *testing.T) {
	srv := setupTest(t, func(cfg *config.Config) {
		cfg.EditorToken = "editor-secret"
		cfg.AdminToken = "admin-secret"
	})
	url := srv.URL + APIPrefix + "/generate-css"
	body := `{"animation":"typewriter"}`

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{name: "missing token", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "wrong token", token: "nope", status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "editor token", token: "editor-secret", status: http.StatusOK},
		{name: "admin token", token: "admin-secret", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, "POST", url, tt.token, body)
			assert.Equal(t, tt.status, resp.StatusCode, out)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, out))
			}
		})
	}

	// Public routes stay open.
	resp, _ := do(t, "GET", srv.URL+APIPrefix+"/animations", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleCSS(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "GET", srv.URL+APIPrefix+"/css/neon?intensity=999&flicker=1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, "--glow-intensity: 50px;")
	assert.Contains(t, body, "@keyframes shogun-neon-flicker-")

	resp, _ = do(t, "GET", srv.URL+APIPrefix+"/css/sparkle", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, "GET", srv.URL+APIPrefix+"/css/bad.name", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlePreview(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "POST", srv.URL+APIPrefix+"/preview", "", `{"animation":"typewriter","text":"Hello <i>you</i>","parameters":{"speed":5}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	out := decodeJSON(t, body)
	assert.Contains(t, out["html"], "Hello you")
	assert.NotEmpty(t, out["css"])
	params := out["parameters"].(map[string]any)
	assert.Equal(t, "Hello you", params["text"])
	assert.EqualValues(t, 10, params["speed"])
}

func TestHandlePreview_RateLimited(t *testing.T) {
	srv := setupTest(t, func(cfg *config.Config) { cfg.PreviewRateLimit = 0.001 })
	url := srv.URL + APIPrefix + "/preview"
	body := `{"animation":"typewriter","text":"x"}`

	resp, _ := do(t, "POST", url, "", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := do(t, "POST", url, "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, out))
}

func TestHandleClearCache(t *testing.T) {
	t.Run("forbidden without admin token configured", func(t *testing.T) {
		srv := setupTest(t, nil)
		resp, out := do(t, "POST", srv.URL+APIPrefix+"/cache/clear", "anything", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", errorCode(t, out))
	})

	t.Run("admin clears", func(t *testing.T) {
		srv := setupTest(t, func(cfg *config.Config) {
			cfg.EditorToken = "editor-secret"
			cfg.AdminToken = "admin-secret"
		})
		url := srv.URL + APIPrefix + "/cache/clear"

		resp, _ := do(t, "POST", url, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp, _ = do(t, "POST", url, "editor-secret", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, out := do(t, "POST", url, "admin-secret", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, out)
		assert.Equal(t, "All cache cleared", decodeJSON(t, out)["message"])

		resp, out = do(t, "POST", url, "admin-secret", `{"cache_key":"abc"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, out)
		assert.Equal(t, "Specific cache cleared", decodeJSON(t, out)["message"])
	})
}

func TestHandleGallery(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "GET", srv.URL+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "style-src 'self' 'unsafe-inline'")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	assert.Contains(t, body, `<style id="shogun-slogans-dynamic-css">`)
	assert.Contains(t, body, `id="animation-neon"`)
	assert.Contains(t, body, "<p>Neon glow effect with customizable colors</p>")
	assert.Contains(t, body, "Shortcode examples")
	assert.Contains(t, body, "Basic Typewriter")
	assert.NotContains(t, body, "\n  <", "page should be minified")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupTest(t, nil)
	do(t, "GET", srv.URL+APIPrefix+"/animations", "", "")

	resp, body := do(t, "GET", srv.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `shogun_request_duration_seconds_count{method="GET",route="/wp-json/shogun-slogans/v1/animations",status_code="200"} 1`)
}

func TestHandleStream(t *testing.T) {
	srv := setupTest(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + APIPrefix + "/preview/stream?text=Hi&speed=10"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}

	var frames []client.Frame
	for {
		var f client.Frame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Type == client.FrameEvent {
			break
		}
	}
	last := frames[len(frames)-1]
	require.NotNil(t, last.Event)
	assert.Equal(t, client.EventTypewriterComplete, last.Event.Name)
	assert.Equal(t, "Hi", last.Snapshot.Displayed)
	assert.Equal(t, client.KindTypewriter, frames[0].Snapshot.Kind)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHandleStream_UnknownKind(t *testing.T) {
	srv := setupTest(t, nil)

	resp, body := do(t, "GET", srv.URL+APIPrefix+"/preview/stream?kind=marquee", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
}

func TestRenderErrorPage(t *testing.T) {
	templateSub, err := fs.Sub(templateFS, "templates")
	require.NoError(t, err)
	r := NewRenderer(templateSub, "test")

	rec := httptest.NewRecorder()
	r.renderErrorPage(rec, log.NewNopLogger(), errors.NewAnimationNotFound("sparkle"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error 404")
	assert.Contains(t, rec.Body.String(), "animation not found: sparkle")
}

func TestRenderError_InternalHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	renderError(rec, errors.NewInternal(io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unexpected EOF")
	assert.NotContains(t, rec.Body.String(), "details")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(req)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}
