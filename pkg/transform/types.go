// Package transform turns extracted wiki entities into the TypeScript
// declaration model: type inference and rewriting, identifier and
// description cleanup, and assembly of collections.
package transform

import (
	"regexp"
	"strings"
)

// CallableType is the canonical generic-callable name.
const CallableType = "Function"

var (
	functionTypeRe = regexp.MustCompile(`^\(.*\)\s*=>\s*.+$`)
	varargTypeRe   = regexp.MustCompile(`(?i)^vararg$`)
	numberHintRe   = regexp.MustCompile(`(?i)\bnumber\s*\{\s*([A-Za-z0-9_.]+)\s*\}`)
	panelHintRe    = regexp.MustCompile(`(?i)\bPanel\s*\{\s*([A-Za-z0-9_.]+)\s*\}`)
	tableHintRe    = regexp.MustCompile(`(?i)\btable\s*\{\s*([A-Za-z0-9_.]+)\s*\}`)
	bareTableRe    = regexp.MustCompile(`(?i)\btable\b`)
	bareFuncRe     = regexp.MustCompile(`(?i)\bfunction\b`)
	orRe           = regexp.MustCompile(`(?i) or `)
	twoWordRe      = regexp.MustCompile(`(\w) +(\w)`)
)

// IsFunctionType reports whether t is already a function type such as
// "(a: number) => void".
func IsFunctionType(t string) bool {
	return functionTypeRe.MatchString(strings.TrimSpace(t))
}

// TransformType rewrites a wiki type string into TypeScript type syntax.
// It is idempotent.
func TransformType(raw string) string {
	t := strings.TrimSpace(raw)
	if IsFunctionType(t) {
		return t
	}
	if varargTypeRe.MatchString(t) {
		return "any[]"
	}

	t = numberHintRe.ReplaceAllString(t, "$1")
	t = panelHintRe.ReplaceAllString(t, "$1")
	t = tableHintRe.ReplaceAllString(t, "$1")

	t = rewriteTableGenerics(t)

	t = bareTableRe.ReplaceAllString(t, "any")
	t = bareFuncRe.ReplaceAllString(t, CallableType)
	t = orRe.ReplaceAllString(t, " | ")

	// Non-overlapping replacement leaves "a b c" as "a_b c"; repeat until
	// stable so the rewrite stays idempotent.
	for {
		next := twoWordRe.ReplaceAllString(t, "${1}_${2}")
		if next == t {
			break
		}
		t = next
	}

	return t
}

// rewriteTableGenerics turns table<T> into T[] and table<K, V> into
// Record<K, V>, innermost first. An unclosed table< is left as it is.
func rewriteTableGenerics(t string) string {
	lower := strings.ToLower(t)
	var b strings.Builder
	from := 0
	for {
		start := indexTableGeneric(lower, from)
		if start < 0 {
			break
		}
		open := start + len("table")
		end := matchingAngle(t, open)
		if end < 0 {
			break
		}
		b.WriteString(t[from:start])

		parts := splitTopLevel(t[open+1 : end])
		for i, p := range parts {
			parts[i] = mapInnerType(strings.TrimSpace(rewriteTableGenerics(p)))
		}
		switch {
		case len(parts) == 1 && parts[0] == "":
			b.WriteString("any[]")
		case len(parts) == 1:
			b.WriteString(parts[0] + "[]")
		default:
			b.WriteString("Record<" + strings.Join(parts, ", ") + ">")
		}
		from = end + 1
	}
	b.WriteString(t[from:])
	return b.String()
}

// indexTableGeneric finds the next "table<" at a word start.
func indexTableGeneric(lower string, from int) int {
	for from < len(lower) {
		i := strings.Index(lower[from:], "table<")
		if i < 0 {
			return -1
		}
		i += from
		if i == 0 || !isWordByte(lower[i-1]) {
			return i
		}
		from = i + 1
	}
	return -1
}

// matchingAngle returns the index of the '>' closing the '<' at open. The
// arrow of a function type does not count.
func matchingAngle(t string, open int) int {
	depth := 0
	for i := open; i < len(t); i++ {
		switch t[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && t[i-1] == '=' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on commas outside any brackets.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '=' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func mapInnerType(t string) string {
	switch strings.ToLower(t) {
	case "table":
		return "any"
	case "function":
		return CallableType
	}
	return t
}
