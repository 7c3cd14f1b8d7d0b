package transform

import (
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/mods"
)

var (
	pageRefRe     = regexp.MustCompile(`(?is)<page\b([^>]*)>(.*?)</page>`)
	textAttrRe    = regexp.MustCompile(`(?i)(?:^|\s)text="([^"]+)"`)
	enumCatRe     = regexp.MustCompile(`(?i)^(enum|enums)$`)
	enumPathRe    = regexp.MustCompile(`(?i)/(enum|enums)/`)
	structCatRe   = regexp.MustCompile(`(?i)^(structure|structures)$`)
	structPathRe  = regexp.MustCompile(`(?i)/(structure|structures)/`)
	colorPathRe   = regexp.MustCompile(`(?i)/Color$`)
	vagueTypeRe   = regexp.MustCompile(`(?i)^(number|string|any|table|function)$`)
	hintedNumRe   = regexp.MustCompile(`(?i)^number(\s*\{.*\})?$`)
	callbackRe    = regexp.MustCompile(`(?is)<callback>(.*?)</callback>`)
	callbackArgRe = regexp.MustCompile(`(?is)<arg\b([^>]*)>(.*?)</arg>`)
	callbackRetRe = regexp.MustCompile(`(?i)<ret\b[^>]*type="([^"]*)"`)
	nameAttrRe    = regexp.MustCompile(`(?i)name="([^"]+)"`)
	typeAttrRe    = regexp.MustCompile(`(?i)type="([^"]*)"`)
	wordFuncRe    = regexp.MustCompile(`(?i)\bFunction\b`)
	vagueOrFuncRe = regexp.MustCompile(`(?i)^(any|Function)?$`)
	compositeRe   = regexp.MustCompile(`[|&]`)
)

// IsVague reports whether t is too generic to be useful on its own and may
// be upgraded by a cross-reference hint.
func IsVague(t string) bool {
	t = strings.TrimSpace(t)
	return t == "" || vagueTypeRe.MatchString(t)
}

// InferType upgrades a vague declared type using the first <page> cross
// reference found in description. A declared type is never downgraded:
// when no rule applies the declared type is returned unchanged.
func InferType(declared, description string, lookup mods.Lookup) string {
	t := strings.TrimSpace(declared)

	// Links inside a callback block describe the callback's arguments.
	description = callbackRe.ReplaceAllString(description, "")

	m := pageRefRe.FindStringSubmatch(description)
	if m == nil {
		return t
	}

	ref := strings.TrimSpace(m[2])
	if ref == "" {
		if tm := textAttrRe.FindStringSubmatch(m[1]); tm != nil {
			ref = tm[1]
		}
	}
	if ref == "" {
		return t
	}
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}

	parts := strings.Split(ref, "/")
	leaf := parts[len(parts)-1]
	if leaf == "" {
		leaf = ref
	}
	category := ""
	if len(parts) > 1 {
		category = parts[len(parts)-2]
	}

	if lookup != nil {
		if rename, ok := mods.First[mods.RenameIdentifier](lookup.For(ref)); ok {
			return rename.Name
		}
	}

	vague := IsVague(t)
	isEnum := enumCatRe.MatchString(category) || enumPathRe.MatchString(ref)
	isStruct := structCatRe.MatchString(category) || structPathRe.MatchString(ref)

	switch {
	case isEnum && (vague || hintedNumRe.MatchString(t)):
		return leaf
	case isStruct && vague:
		return leaf
	case (colorPathRe.MatchString(ref) || leaf == "Color") && vague:
		return "Color"
	}
	return t
}

// CallbackSignature builds a function type from the first <callback> block
// in description. It returns false when there is none.
func CallbackSignature(description string, lookup mods.Lookup) (string, bool) {
	m := callbackRe.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	block := m[1]

	var args []string
	for _, am := range callbackArgRe.FindAllStringSubmatch(block, -1) {
		attrs, inner := am[1], am[2]

		name := "arg"
		if nm := nameAttrRe.FindStringSubmatch(attrs); nm != nil {
			name = nm[1]
		}
		typ := "any"
		if tm := typeAttrRe.FindStringSubmatch(attrs); tm != nil {
			typ = tm[1]
		}

		// A rest parameter must be last.
		if name == "..." || varargTypeRe.MatchString(strings.TrimSpace(typ)) {
			args = append(args, "...args: any[]")
			break
		}
		args = append(args, TransformIdentifier(name)+": "+TransformType(InferType(typ, inner, lookup)))
	}

	var rets []string
	for _, rm := range callbackRetRe.FindAllStringSubmatch(block, -1) {
		t := strings.TrimSpace(rm[1])
		if t == "" {
			t = "void"
		}
		rets = append(rets, TransformType(t))
	}

	return "(" + strings.Join(args, ", ") + ") => " + joinReturns(rets), true
}

func joinReturns(rets []string) string {
	switch len(rets) {
	case 0:
		return "void"
	case 1:
		return rets[0]
	}
	return "LuaMultiReturn<[" + strings.Join(rets, ", ") + "]>"
}

// MergeCallbackIntoType replaces the generic callable marker in rawType with
// sig. Inside a union or intersection only the callable branch is replaced.
func MergeCallbackIntoType(rawType, sig string) string {
	t := strings.TrimSpace(TransformType(rawType))

	if compositeRe.MatchString(t) {
		joiner := " & "
		if strings.Contains(t, "|") {
			joiner = " | "
		}
		wrapped := sig
		if !(strings.HasPrefix(sig, "(") && strings.HasSuffix(sig, ")")) {
			wrapped = "(" + sig + ")"
		}
		parts := compositeRe.Split(t, -1)
		for i, p := range parts {
			p = strings.TrimSpace(p)
			if strings.EqualFold(p, CallableType) {
				p = wrapped
			}
			parts[i] = p
		}
		return strings.Join(parts, joiner)
	}

	if strings.EqualFold(t, CallableType) {
		return sig
	}
	return t
}

// PreferCallbackType picks the callback signature over a vague or callable
// declared type and keeps precise types as they are.
func PreferCallbackType(rawType, sig string) string {
	t := TransformType(rawType)
	if wordFuncRe.MatchString(t) {
		return MergeCallbackIntoType(rawType, sig)
	}
	if vagueOrFuncRe.MatchString(t) {
		return sig
	}
	return t
}
