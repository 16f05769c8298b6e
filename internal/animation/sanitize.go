package animation

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	hexColorRegex   = regexp.MustCompile(`^#([A-Fa-f0-9]{3}){1,2}$`)
	sizeRegex       = regexp.MustCompile(`^\d+(\.\d+)?(px|em|rem|%|vh|vw)$`)
	leadingIntRegex = regexp.MustCompile(`^[+-]?\d+`)
)

// cssUnsafe are characters that could close a declaration or block, or break
// out of a quoted CSS string.
const cssUnsafe = "{}<>;\"\\"

// Resolve turns raw (caller-supplied, untrusted) parameters into a complete,
// typed parameter set for def. Every declared parameter gets a value; raw
// keys that def does not declare are dropped.
func Resolve(def *Definition, raw map[string]any) Params {
	params := make(Params, len(def.Parameters))
	for _, spec := range def.Parameters {
		rv, ok := raw[spec.Name]
		if !ok || rv == nil {
			params[spec.Name] = spec.Default
			continue
		}
		params[spec.Name] = Sanitize(spec, rv)
	}
	return params
}

// Sanitize coerces one raw value according to spec. It never fails:
// anything that cannot be coerced yields spec.Default.
func Sanitize(spec ParameterSpec, raw any) Value {
	switch spec.Type {
	case TypeInt:
		n, ok := coerceInt(raw)
		if !ok {
			return spec.Default
		}
		if spec.Min != nil && n < *spec.Min {
			n = *spec.Min
		}
		if spec.Max != nil && n > *spec.Max {
			n = *spec.Max
		}
		return IntValue(n)

	case TypeString:
		return StringValue(SanitizeText(coerceString(raw)))

	case TypeColor:
		s := strings.TrimSpace(coerceString(raw))
		if hexColorRegex.MatchString(s) {
			return ColorValue(s)
		}
		return spec.Default

	case TypeSize:
		s := SanitizeText(coerceString(raw))
		if sizeRegex.MatchString(s) {
			return SizeValue(s)
		}
		return spec.Default

	case TypeBoolean:
		return BoolValue(ParseBool(raw))
	}
	return spec.Default
}

// SanitizeText strips markup, control characters and CSS-breaking
// characters, collapses whitespace and trims.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(cssUnsafe, r) {
			return -1
		}
		return r
	}, CleanText(s))
	return strings.TrimSpace(s)
}

// CleanText strips markup and control characters, collapses whitespace and
// trims. It is the sanitizer for display text, which is HTML-escaped on output.
func CleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = tagRegex.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		}
		return r
	}, s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseBool reports whether raw is truthy: "1", "true", "yes", "on"
// (case-insensitive), true, or a non-zero number.
func ParseBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// coerceInt converts raw to an int the way a lenient form parser would:
// numbers are truncated, strings contribute their leading integer ("120px"
// is 120). Strings without a leading integer are not coercible.
func coerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return clampInt64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return clampInt64(int64(v)), true
	case json.Number:
		return coerceInt(string(v))
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		m := leadingIntRegex.FindString(strings.TrimSpace(v))
		if m == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// Out of range: saturate in the direction of the sign.
			if strings.HasPrefix(m, "-") {
				return math.MinInt32, true
			}
			return math.MaxInt32, true
		}
		return clampInt64(n), true
	}
	return 0, false
}

func clampInt64(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}

func coerceString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return string(v)
	case nil:
		return ""
	}
	return ""
}

// TextOf extracts the sanitized "text" meta parameter from raw, if present.
func TextOf(raw map[string]any) (string, bool) {
	v, ok := raw["text"]
	if !ok || v == nil {
		return "", false
	}
	return CleanText(coerceString(v)), true
}
