package css

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/fasthash/fnv1a"

	"github.com/hpungsan/shogun/internal/animation"
)

// IDLength is the number of hex characters in a unique id.
const IDLength = 8

// StableID derives the unique id of an animation from its name and resolved
// parameters. Equal inputs always produce the same id.
func StableID(name string, params animation.Params) string {
	return hashHex(name+params.Canonical())[:IDLength]
}

// FreshID is StableID salted with a ULID, for callers that need a new id
// even when the parameters repeat.
func FreshID(name string, params animation.Params) string {
	return hashHex(name+params.Canonical()+ulid.Make().String())[:IDLength]
}

func hashHex(s string) string {
	return fmt.Sprintf("%016x", fnv1a.HashString64(s))
}

// Selector returns the default class selector for an animation instance.
func Selector(name, uniqueID string) string {
	return ".shogun-" + name + "-" + uniqueID
}

// ApplySelector swaps the default selector in compiled CSS for a caller
// supplied one. The replacement is stripped of characters that could break
// out of the rule; an empty result leaves css unchanged.
func ApplySelector(css, name, uniqueID, selector string) string {
	selector = animation.SanitizeText(selector)
	if selector == "" {
		return css
	}
	return strings.ReplaceAll(css, Selector(name, uniqueID), selector)
}
