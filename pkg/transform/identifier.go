package transform

import (
	"regexp"
	"strings"
)

const (
	// MissingIdentifier stands in for an empty wiki name so the gap stays
	// visible in the generated output.
	MissingIdentifier = "MISSING_WIKI_DATA"

	// VarargIdentifier replaces the "..." rest-parameter marker.
	VarargIdentifier = "vararg"
)

// reservedIdentifiers are names that cannot be used as TypeScript
// parameter or binding names.
var reservedIdentifiers = map[string]string{
	"break":      "break_",
	"case":       "case_",
	"catch":      "catch_",
	"class":      "class_",
	"const":      "const_",
	"continue":   "continue_",
	"debugger":   "debugger_",
	"default":    "default_",
	"delete":     "delete_",
	"do":         "do_",
	"else":       "else_",
	"enum":       "enum_",
	"export":     "export_",
	"extends":    "extends_",
	"false":      "false_",
	"finally":    "finally_",
	"for":        "for_",
	"function":   "function_",
	"if":         "if_",
	"import":     "import_",
	"in":         "in_",
	"instanceof": "instanceof_",
	"new":        "new_",
	"null":       "null_",
	"return":     "return_",
	"super":      "super_",
	"switch":     "switch_",
	"this":       "this_",
	"throw":      "throw_",
	"true":       "true_",
	"try":        "try_",
	"typeof":     "typeof_",
	"var":        "var_",
	"void":       "void_",
	"while":      "while_",
	"with":       "with_",
}

var (
	parenSuffixRe = regexp.MustCompile(`\(.*\)`)
	separatorRe   = regexp.MustCompile(`[/ ]`)
)

// TransformIdentifier maps a wiki name to a valid, stable output
// identifier. Parenthesized qualifiers such as "(Order)" are dropped.
func TransformIdentifier(name string) string {
	if safe, ok := reservedIdentifiers[name]; ok {
		return safe
	}
	switch name {
	case "":
		return MissingIdentifier
	case "...":
		return VarargIdentifier
	}

	id := strings.ReplaceAll(name, ".", "")
	id = parenSuffixRe.ReplaceAllString(id, "")
	id = strings.TrimSpace(id)
	id = separatorRe.ReplaceAllString(id, "_")

	if id == "" {
		return MissingIdentifier
	}
	return id
}
