package mcp

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/shogun/internal/errors"
)

// normalizer is implemented by requests that tidy their fields after
// decoding.
type normalizer interface {
	normalize()
}

// decode copies a tool call's arguments into a request. Numbers decode as
// json.Number so animation parameters reach the sanitizers with their
// original digits. Failures are INVALID_REQUEST errors naming the field.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	if args := req.GetArguments(); len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return out, errors.NewInvalidRequest("arguments are not valid JSON")
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return out, argumentError(err)
		}
	}
	if n, ok := any(&out).(normalizer); ok {
		n.normalize()
	}
	return out, nil
}

func argumentError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return errors.NewInvalidRequest(typeErr.Field + " must be " + kindOf(typeErr.Type))
	}
	return errors.NewInvalidRequest("invalid arguments: " + err.Error())
}

func kindOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	}
	return "a " + t.Kind().String()
}

func (r *ListRequest) normalize() {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

func (r *GetRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *GenerateCSSRequest) normalize() {
	r.Animation = strings.TrimSpace(r.Animation)
	r.Selector = strings.TrimSpace(r.Selector)
}

func (r *PreviewRequest) normalize() {
	r.Animation = strings.TrimSpace(r.Animation)
}

// Blank names are dropped; an export of only blanks exports everything.
func (r *ExportRequest) normalize() {
	r.Path = strings.TrimSpace(r.Path)
	names := r.Names[:0]
	for _, n := range r.Names {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	r.Names = names
	if len(r.Names) == 0 {
		r.Names = nil
	}
}

func (r *CacheClearRequest) normalize() {
	r.CacheKey = strings.TrimSpace(r.CacheKey)
}
