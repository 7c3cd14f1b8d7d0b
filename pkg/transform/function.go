package transform

import (
	"log/slog"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/mods"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// Transformer converts wiki entities into catalog entities, consulting the
// modification database by page address.
type Transformer struct {
	mods   mods.Lookup
	logger *slog.Logger
}

// New creates a Transformer. A nil lookup means no modifications; a nil
// logger falls back to slog.Default().
func New(lookup mods.Lookup, logger *slog.Logger) *Transformer {
	if lookup == nil {
		lookup = mods.Empty()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{mods: lookup, logger: logger}
}

// InferType runs the package-level InferType with the transformer's
// modification lookup.
func (t *Transformer) InferType(declared, description string) string {
	return InferType(declared, description, t.mods)
}

// Function converts a scraped function. The identifier is the raw wiki
// name; collection assembly strips container prefixes from it later.
func (t *Transformer) Function(fn wiki.Function) catalog.Function {
	id := fn.Name
	if id == "" {
		id = MissingIdentifier
		t.logger.Warn("function without a name", "address", fn.Address)
	}
	return catalog.Function{
		Identifier: id,
		Args:       t.Args(fn),
		Ret:        t.Returns(fn),
		DocComment: functionDoc(fn),
	}
}

// Args converts the function's arguments. Per argument the type is
// inferred, patched by a modify_argument rule, upgraded to a callback
// signature when one is documented, then rewritten to TypeScript.
func (t *Transformer) Args(fn wiki.Function) []catalog.Argument {
	if len(fn.Args) == 0 {
		return nil
	}
	argMods := mods.Of[mods.ModifyArgument](t.mods.For(fn.Address))

	out := make([]catalog.Argument, 0, len(fn.Args))
	for _, arg := range fn.Args {
		typ := t.InferType(arg.Type, arg.Description)
		def := arg.Default

		for _, m := range argMods {
			if m.Argument != arg.Name {
				continue
			}
			if m.Type != "" {
				typ = m.Type
			}
			if m.Default != nil {
				def = m.Default
			}
			break
		}

		if def != nil {
			d := UnescapeEntities(*def)
			if strings.Contains(d, "`") {
				d = "nil"
			}
			def = &d
		}

		sig, ok := CallbackSignature(arg.Description, t.mods)
		if !ok && wordFuncRe.MatchString(TransformType(typ)) {
			sig, ok = CallbackSignature(fn.Description, t.mods)
		}
		if ok {
			typ = PreferCallbackType(typ, sig)
		}

		if !IsFunctionType(typ) {
			typ = TransformType(typ)
		}

		id := TransformIdentifier(arg.Name)
		if arg.Name == "..." || varargTypeRe.MatchString(strings.TrimSpace(arg.Type)) {
			id = "..." + id
			typ = restType(typ)
		}

		out = append(out, catalog.Argument{Identifier: id, Type: typ, Default: def})
	}
	return out
}

// restType makes t usable as a rest parameter type.
func restType(t string) string {
	switch {
	case strings.HasSuffix(t, "[]"):
		return t
	case t == "" || t == "any":
		return "any[]"
	case strings.Contains(t, "|") || IsFunctionType(t):
		return "(" + t + ")[]"
	}
	return t + "[]"
}

// Returns builds the return type: a modify_return rule wins, otherwise
// zero values are void, one value is its own type and several are wrapped
// in LuaMultiReturn.
func (t *Transformer) Returns(fn wiki.Function) string {
	if m, ok := mods.First[mods.ModifyReturn](t.mods.For(fn.Address)); ok {
		return m.Type
	}

	switch len(fn.Rets) {
	case 0:
		return "void"
	case 1:
		r := fn.Rets[0]
		typ := t.InferType(r.Type, r.Description)
		if strings.EqualFold(strings.TrimSpace(typ), "vararg") {
			return "any"
		}
		return TransformType(typ)
	}

	types := make([]string, len(fn.Rets))
	for i, r := range fn.Rets {
		types[i] = TransformType(t.InferType(r.Type, r.Description))
	}
	return joinReturns(types)
}

func functionDoc(fn wiki.Function) string {
	var params []string
	for _, a := range fn.Args {
		id := TransformIdentifier(a.Name)
		desc := compactLines(TransformDescription(a.Description))

		name := id
		if a.Default != nil {
			if d := UnescapeEntities(*a.Default); d != "" {
				name = "[" + id + " = " + d + "]"
			} else {
				name = "[" + id + "]"
			}
		}
		params = append(params, "@param "+name+" - "+desc)
	}

	var returns []string
	for _, r := range fn.Rets {
		if desc := compactLines(TransformDescription(r.Description)); desc != "" {
			returns = append(returns, "@returns "+desc)
		}
	}

	return joinDoc(
		RealmBadge(fn.Realm),
		TransformDescription(fn.Description),
		strings.Join(params, "\n"),
		strings.Join(returns, "\n"),
	)
}

func compactLines(s string) string {
	for strings.Contains(s, "\n\n") {
		s = strings.ReplaceAll(s, "\n\n", "\n")
	}
	return s
}
