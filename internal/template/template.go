// Package template implements the small substitution language used by
// animation CSS templates: {{name}} variables and {{#if name}}...{{/if}}
// conditional blocks. Blocks do not nest.
package template

import (
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokVariable
	tokConditional
)

type token struct {
	kind tokenKind
	text string  // literal text, or variable/condition name
	body []token // conditional body: literals and variables only
}

var (
	varRegex = regexp.MustCompile(`^\{\{(\w+)\}\}`)
	ifRegex  = regexp.MustCompile(`^\{\{#if (\w+)\}\}`)
)

const endIf = "{{/if}}"

// Template is a parsed template.
type Template struct {
	tokens []token
}

// Parse tokenizes src. It never fails: anything that is not a well-formed
// variable or terminated conditional is kept as literal text.
func Parse(src string) *Template {
	var tokens []token
	rest := src
	for rest != "" {
		i := strings.Index(rest, "{{")
		if i < 0 {
			tokens = appendLiteral(tokens, rest)
			break
		}
		tokens = appendLiteral(tokens, rest[:i])
		rest = rest[i:]

		if m := ifRegex.FindStringSubmatch(rest); m != nil {
			after := rest[len(m[0]):]
			end := strings.Index(after, endIf)
			if end < 0 {
				tokens = appendLiteral(tokens, m[0])
				rest = after
				continue
			}
			tokens = append(tokens, token{
				kind: tokConditional,
				text: m[1],
				body: parseVariables(after[:end]),
			})
			rest = after[end+len(endIf):]
			continue
		}
		if m := varRegex.FindStringSubmatch(rest); m != nil {
			tokens = append(tokens, token{kind: tokVariable, text: m[1]})
			rest = rest[len(m[0]):]
			continue
		}
		tokens = appendLiteral(tokens, "{")
		rest = rest[1:]
	}
	return &Template{tokens: tokens}
}

// parseVariables tokenizes a conditional body. Any {{#if}} inside it is
// literal text.
func parseVariables(src string) []token {
	var tokens []token
	rest := src
	for rest != "" {
		i := strings.Index(rest, "{{")
		if i < 0 {
			tokens = appendLiteral(tokens, rest)
			break
		}
		tokens = appendLiteral(tokens, rest[:i])
		rest = rest[i:]
		if m := varRegex.FindStringSubmatch(rest); m != nil {
			tokens = append(tokens, token{kind: tokVariable, text: m[1]})
			rest = rest[len(m[0]):]
			continue
		}
		tokens = appendLiteral(tokens, "{")
		rest = rest[1:]
	}
	return tokens
}

func appendLiteral(tokens []token, s string) []token {
	if s == "" {
		return tokens
	}
	if n := len(tokens); n > 0 && tokens[n-1].kind == tokLiteral {
		tokens[n-1].text += s
		return tokens
	}
	return append(tokens, token{kind: tokLiteral, text: s})
}

// Truthy is the default condition test: non-empty and not "0".
func Truthy(s string) bool {
	return s != "" && s != "0"
}

// Execute expands the template. Missing variables expand to "". truthy
// decides conditionals from the variable's value; nil means Truthy.
func (t *Template) Execute(vars map[string]string, truthy func(string) bool) string {
	if truthy == nil {
		truthy = Truthy
	}
	var b strings.Builder
	writeTokens(&b, t.tokens, vars, truthy)
	return b.String()
}

func writeTokens(b *strings.Builder, tokens []token, vars map[string]string, truthy func(string) bool) {
	for _, tok := range tokens {
		switch tok.kind {
		case tokLiteral:
			b.WriteString(tok.text)
		case tokVariable:
			b.WriteString(vars[tok.text])
		case tokConditional:
			if truthy(vars[tok.text]) {
				writeTokens(b, tok.body, vars, truthy)
			}
		}
	}
}

// Names returns every variable and condition name the template references,
// in first-use order.
func (t *Template) Names() []string {
	seen := map[string]bool{}
	var names []string
	var walk func([]token)
	walk = func(tokens []token) {
		for _, tok := range tokens {
			if tok.kind == tokLiteral {
				continue
			}
			if !seen[tok.text] {
				seen[tok.text] = true
				names = append(names, tok.text)
			}
			walk(tok.body)
		}
	}
	walk(t.tokens)
	return names
}

// Uses reports whether the template references name.
func (t *Template) Uses(name string) bool {
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Compile parses and executes src in one step.
func Compile(src string, vars map[string]string) string {
	return Parse(src).Execute(vars, nil)
}
