package web

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/ops"
	"github.com/hpungsan/shogun/internal/shortcode"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains HTTP route handlers.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
	limiter  *rate.Limiter
	logger   log.Logger
	upgrader websocket.Upgrader
}

// GenerateCSSRequest is the body of POST /generate-css.
type GenerateCSSRequest struct {
	Animation  string         `json:"animation"`
	Parameters map[string]any `json:"parameters"`
	Selector   string         `json:"selector"`
	UseCache   *bool          `json:"use_cache"`
}

// PreviewRequest is the body of POST /preview.
type PreviewRequest struct {
	Animation  string         `json:"animation"`
	Text       string         `json:"text"`
	Parameters map[string]any `json:"parameters"`
}

// ClearCacheRequest is the body of POST /cache/clear.
type ClearCacheRequest struct {
	CacheKey string `json:"cache_key"`
}

// HandleListAnimations handles GET /animations.
func (h *Handlers) HandleListAnimations(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListAnimations(h.env, ops.ListAnimationsInput{
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleGetAnimation handles GET /animations/{name}.
func (h *Handlers) HandleGetAnimation(w http.ResponseWriter, r *http.Request) {
	result, err := ops.GetAnimation(h.env, ops.GetAnimationInput{Name: mux.Vars(r)["name"]})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleGenerateCSS handles POST /generate-css.
func (h *Handlers) HandleGenerateCSS(w http.ResponseWriter, r *http.Request) {
	var req GenerateCSSRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.GenerateCSS(r.Context(), h.env, ops.GenerateCSSInput{
		Animation:  req.Animation,
		Parameters: req.Parameters,
		Selector:   req.Selector,
		UseCache:   req.UseCache,
	})
	if err != nil {
		h.logFailure(r, err)
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleCSS handles GET /css/{animation}: the query string carries the
// parameters and the response is the raw stylesheet.
func (h *Handlers) HandleCSS(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	result, err := ops.GenerateCSS(r.Context(), h.env, ops.GenerateCSSInput{
		Animation:  mux.Vars(r)["animation"],
		Parameters: params,
	})
	if err != nil {
		h.logFailure(r, err)
		renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.CSS)
}

// HandlePreview handles POST /preview. Previews are never cached.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.Preview(r.Context(), h.env, ops.PreviewInput{
		Animation:  req.Animation,
		Text:       req.Text,
		Parameters: req.Parameters,
	})
	if err != nil {
		h.logFailure(r, err)
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleClearCache handles POST /cache/clear. An empty body clears everything.
func (h *Handlers) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	var req ClearCacheRequest
	if err := decodeBody(w, r, &req); err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.ClearCache(r.Context(), h.env, ops.ClearCacheInput{CacheKey: req.CacheKey})
	if err != nil {
		h.logFailure(r, err)
		renderError(w, err)
		return
	}
	level.Info(h.logger).Log("msg", "cache cleared", "key", req.CacheKey)
	renderJSON(w, http.StatusOK, result)
}

// GalleryPageData is the template data for the gallery.
type GalleryPageData struct {
	PageData
	Animations []GalleryItem
	Examples   []shortcode.Example
	// PageCSS is the style block for every preview on the page.
	PageCSS string
}

// GalleryItem is one animation shown in the gallery.
type GalleryItem struct {
	Name        string
	Category    string
	Description string
	HTML        string
	Parameters  []GalleryParam
}

// GalleryParam is one row of an animation's parameter table.
type GalleryParam struct {
	Name    string
	Type    animation.ParamType
	Default string
	Range   string
}

// HandleGallery handles GET / by rendering every animation with its
// default parameters.
func (h *Handlers) HandleGallery(w http.ResponseWriter, r *http.Request) {
	list, err := ops.ListAnimations(h.env, ops.ListAnimationsInput{})
	if err != nil {
		h.renderer.renderErrorPage(w, h.logger, err)
		return
	}
	labels := animation.Categories()

	page := ops.NewPageCSS()
	items := make([]GalleryItem, 0, len(list.Animations))
	for _, a := range list.Animations {
		out, err := ops.Render(r.Context(), h.env, ops.RenderInput{Animation: a.Name})
		if err != nil {
			h.logFailure(r, err)
			h.renderer.renderErrorPage(w, h.logger, err)
			return
		}
		page.Add(out.UniqueID, out.CSS)

		def, _ := h.env.Registry.Get(a.Name)
		items = append(items, GalleryItem{
			Name:        a.Name,
			Category:    labels[a.Category],
			Description: a.Description,
			HTML:        out.HTML,
			Parameters:  galleryParams(def),
		})
	}

	h.renderer.renderPageStatus(w, h.logger, http.StatusOK, "gallery", GalleryPageData{
		PageData:   PageData{Title: "Gallery", Version: h.renderer.version},
		Animations: items,
		Examples:   shortcode.Examples(),
		PageCSS:    page.Flush(),
	})
}

func galleryParams(def *animation.Definition) []GalleryParam {
	if def == nil {
		return nil
	}
	out := make([]GalleryParam, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		gp := GalleryParam{Name: p.Name, Type: p.Type}
		if p.Default != nil {
			gp.Default = p.Default.String()
		}
		switch {
		case p.Min != nil && p.Max != nil:
			gp.Range = fmt.Sprintf("%d–%d", *p.Min, *p.Max)
		case p.Min != nil:
			gp.Range = fmt.Sprintf("≥ %d", *p.Min)
		case p.Max != nil:
			gp.Range = fmt.Sprintf("≤ %d", *p.Max)
		}
		out = append(out, gp)
	}
	return out
}

// requireEditor guards a route with the editor token. Without a configured
// token the route is open. The admin token is accepted too.
func (h *Handlers) requireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := h.env.Config
		if cfg.EditorToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		if err := checkToken(r, cfg.EditorToken, cfg.AdminToken, "edit animations"); err != nil {
			renderError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards a route with the admin token. Without a configured
// token the route is always forbidden.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := h.env.Config
		if cfg.AdminToken == "" {
			renderError(w, errors.NewForbidden("manage the cache"))
			return
		}
		if err := checkToken(r, cfg.AdminToken, "", "manage the cache"); err != nil {
			renderError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimited rejects requests beyond the preview budget with 429.
func (h *Handlers) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			renderError(w, errors.NewRateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkToken accepts a bearer token equal to want or also.
func checkToken(r *http.Request, want, also, action string) error {
	got, ok := bearerToken(r)
	if !ok {
		return errors.NewUnauthorized()
	}
	if tokenEqual(got, want) || (also != "" && tokenEqual(got, also)) {
		return nil
	}
	return errors.NewForbidden(action)
}

func tokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// logFailure logs server-side failures; client errors stay quiet.
func (h *Handlers) logFailure(r *http.Request, err error) {
	if errors.StatusOf(err) >= http.StatusInternalServerError {
		level.Error(h.logger).Log("msg", "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}
