package ops

import (
	"strings"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/errors"
)

// AnimationSummary is one entry of ListAnimations.
type AnimationSummary struct {
	Name        string                             `json:"name"`
	Category    animation.Category                 `json:"category"`
	Description string                             `json:"description"`
	Parameters  map[string]animation.ParameterSpec `json:"parameters"`
	Version     string                             `json:"version"`
}

// ListAnimationsInput contains parameters for the ListAnimations operation.
type ListAnimationsInput struct {
	Category string // optional filter
}

// ListAnimationsOutput contains the result of the ListAnimations operation.
type ListAnimationsOutput struct {
	Animations []AnimationSummary             `json:"animations"`
	Categories map[animation.Category]string `json:"categories"`
	Total      int                           `json:"total"`
}

// ListAnimations returns the registered animations sorted by name.
func ListAnimations(env *Env, input ListAnimationsInput) (*ListAnimationsOutput, error) {
	var defs []animation.Definition
	if c := strings.TrimSpace(input.Category); c != "" {
		cat := animation.Category(c)
		if !cat.Valid() {
			return nil, errors.NewInvalidRequest("unknown category: " + c)
		}
		defs = env.Registry.ByCategory(cat)
	} else {
		defs = env.Registry.List()
	}

	items := make([]AnimationSummary, 0, len(defs))
	for i := range defs {
		items = append(items, summarize(&defs[i]))
	}
	return &ListAnimationsOutput{
		Animations: items,
		Categories: animation.Categories(),
		Total:      len(items),
	}, nil
}

// GetAnimationInput contains parameters for the GetAnimation operation.
type GetAnimationInput struct {
	Name string
}

// GetAnimationOutput contains the result of the GetAnimation operation.
type GetAnimationOutput struct {
	AnimationSummary
	JSInit string `json:"js_init"`
	// ParameterOrder lists parameter names in declaration order.
	ParameterOrder []string `json:"parameter_order"`
}

// GetAnimation returns one definition.
func GetAnimation(env *Env, input GetAnimationInput) (*GetAnimationOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	def, ok := env.Registry.Get(name)
	if !ok {
		return nil, errors.NewAnimationNotFound(name)
	}
	order := make([]string, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		order = append(order, p.Name)
	}
	return &GetAnimationOutput{
		AnimationSummary: summarize(def),
		JSInit:           def.JSInit,
		ParameterOrder:   order,
	}, nil
}

func summarize(def *animation.Definition) AnimationSummary {
	params := make(map[string]animation.ParameterSpec, len(def.Parameters))
	for _, p := range def.Parameters {
		params[p.Name] = p
	}
	return AnimationSummary{
		Name:        def.Name,
		Category:    def.Category,
		Description: def.Description,
		Parameters:  params,
		Version:     def.Version,
	}
}
