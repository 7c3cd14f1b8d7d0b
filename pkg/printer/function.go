package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
)

// SubModelIdsType marks an argument that takes a validated sub-model id
// string.
const SubModelIdsType = "SubModelIds"

// signature renders fn as one declaration line, or as two overloads when it
// takes SubModelIds arguments.
func signature(fn catalog.Function, prefix string, optional bool) string {
	name := fn.Identifier
	if optional {
		name += "?"
	}

	var subIdx []int
	for i, a := range fn.Args {
		if a.Type == SubModelIdsType {
			subIdx = append(subIdx, i)
		}
	}
	if len(subIdx) > 0 {
		return subModelOverloads(fn, prefix, name, subIdx)
	}

	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		args[i] = argument(a)
	}
	return fmt.Sprintf("%s%s(%s): %s;", prefix, name, strings.Join(args, ", "), fn.Ret)
}

// argument renders one parameter. The default decides the form: nil makes
// it optional, strings keep a literal initializer, numbers and booleans an
// untyped one.
func argument(a catalog.Argument) string {
	if a.Default == nil || strings.HasPrefix(a.Identifier, "...") {
		return a.Identifier + ": " + a.Type
	}

	d := strings.TrimSpace(*a.Default)
	switch {
	case strings.EqualFold(d, "nil"):
		return a.Identifier + "?: " + a.Type
	case a.Type == "string" || a.Type == SubModelIdsType:
		lit := d
		if !isQuoted(d) {
			lit = strconv.Quote(d)
		}
		return a.Identifier + ": " + a.Type + " = " + lit
	case d == "true" || d == "false" || isNumber(d):
		return a.Identifier + " = " + d
	}
	return a.Identifier + "?: " + a.Type
}

// isQuoted reports whether s is wrapped in a matching pair of quotes.
func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// subModelOverloads renders a literal-only overload that validates the id
// string at compile time and a second one for widened runtime strings.
func subModelOverloads(fn catalog.Function, prefix, name string, subIdx []int) string {
	pos := make(map[int]int, len(subIdx))
	for k, i := range subIdx {
		pos[i] = k
	}

	overload := func(param string, typeFor func(p string) string) string {
		generics := make([]string, len(subIdx))
		for k := range subIdx {
			generics[k] = fmt.Sprintf("%s%d extends string", param, k)
		}
		args := make([]string, len(fn.Args))
		for i, a := range fn.Args {
			k, ok := pos[i]
			if !ok {
				args[i] = a.Identifier + ": " + a.Type
				continue
			}
			args[i] = a.Identifier + ": " + typeFor(fmt.Sprintf("%s%d", param, k))
		}
		return fmt.Sprintf("%s%s<%s>(%s): %s;", prefix, name, strings.Join(generics, ", "), strings.Join(args, ", "), fn.Ret)
	}

	literal := overload("S", func(p string) string {
		return "(string extends " + p + " ? never : _ValidatedSubModelIdsOK<" + p + ">)"
	})
	widened := overload("W", func(p string) string {
		return "string & (string extends " + p + " ? " + p + " : never)"
	})
	return literal + "\n" + widened
}
