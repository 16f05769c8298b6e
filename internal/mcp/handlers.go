package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/ops"
	"github.com/hpungsan/shogun/internal/shortcode"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// ListRequest represents the arguments for animation_list.
type ListRequest struct {
	Category string `json:"category,omitempty"`
}

// GetRequest represents the arguments for animation_get.
type GetRequest struct {
	Name string `json:"name"`
}

// GenerateCSSRequest represents the arguments for animation_generate_css.
type GenerateCSSRequest struct {
	Animation  string         `json:"animation"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Selector   string         `json:"selector,omitempty"`
	UseCache   *bool          `json:"use_cache,omitempty"`
}

// PreviewRequest represents the arguments for animation_preview.
type PreviewRequest struct {
	Animation  string         `json:"animation"`
	Text       string         `json:"text,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// RenderRequest represents the arguments for animation_render.
type RenderRequest struct {
	Content string `json:"content"`
}

// RenderResponse is the output of animation_render.
type RenderResponse struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// ExportRequest represents the arguments for animation_export.
type ExportRequest struct {
	Path  string   `json:"path,omitempty"`
	Names []string `json:"names,omitempty"`
}

// CacheClearRequest represents the arguments for cache_clear.
type CacheClearRequest struct {
	CacheKey string `json:"cache_key,omitempty"`
}

// HandleList handles the animation_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListAnimations(h.env, ops.ListAnimationsInput{Category: input.Category})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the animation_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.GetAnimation(h.env, ops.GetAnimationInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGenerateCSS handles the animation_generate_css tool call.
func (h *Handlers) HandleGenerateCSS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateCSSRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.GenerateCSS(ctx, h.env, ops.GenerateCSSInput{
		Animation:  input.Animation,
		Parameters: input.Parameters,
		Selector:   input.Selector,
		UseCache:   input.UseCache,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePreview handles the animation_preview tool call.
func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Preview(ctx, h.env, ops.PreviewInput{
		Animation:  input.Animation,
		Text:       input.Text,
		Parameters: input.Parameters,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRender handles the animation_render tool call.
// Unknown animation types render inline error markup rather than failing the call.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(input.Content) == "" {
		return errorResult(errors.NewInvalidRequest("content is required")), nil
	}

	html, css, err := shortcode.Expand(ctx, h.env, input.Content)
	if err != nil {
		level.Error(h.env.Logger).Log("msg", "render failed", "err", err)
		return errorResult(err), nil
	}
	return successResult(RenderResponse{HTML: html, CSS: css})
}

// HandleExport handles the animation_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ExportCatalog(ctx, h.env, ops.ExportCatalogInput{
		Path:  input.Path,
		Names: input.Names,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCacheClear handles the cache_clear tool call.
func (h *Handlers) HandleCacheClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CacheClearRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ClearCache(ctx, h.env, ops.ClearCacheInput{CacheKey: input.CacheKey})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := errors.As(err); ok {
		msg := sErr.Message
		// Keep any context added by wrapping around the structured error.
		if err != error(sErr) && sErr.Code != errors.ErrInternal {
			msg = strings.Replace(err.Error(), sErr.Error(), sErr.Message, 1)
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
