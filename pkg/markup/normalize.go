// Package markup repairs and parses the XML-like markup served by the wiki.
//
// Wiki markup is not XML: it carries bare ampersands, comparison operators,
// PHP snippets, backticks, sloppy attribute lists and documentation
// placeholders that look like tags. Normalize applies a fixed list of text
// repairs so the result can be read by an XML tokenizer, and Parse turns the
// repaired text into a Node tree.
package markup

import (
	"regexp"
	"strings"
)

// Ordered text-level repairs. Order matters: ampersands must be escaped
// before any entity is introduced.
var textRepairs = []struct{ from, to string }{
	{"&", "&amp;"},
	{" < ", " &lt; "},
	{"<?php", "&lt;?php"},
	{"?>", "?&gt;"},
	{" > ", " &gt; "},
	{" <= ", " &lt;= "},
	{" >= ", " &gt;= "},
	{"`", "&grave;"},
}

var (
	// Quoted values are skipped as a unit, so a '>' inside one does not end
	// the tag.
	openTagRe = regexp.MustCompile(`(?i)<([a-z0-9:_-]+)\s+((?:"[^"]*"|'[^']*'|[^>"'])*?)(/?)>`)

	quotedValueRe = regexp.MustCompile(`"[^"]*"|'[^']*'`)

	// Trailing commas after a quoted attribute value: name="a", other="b"
	attrCommaDoubleRe = regexp.MustCompile(`" *,\s*`)
	attrCommaSingleRe = regexp.MustCompile(`' *,\s*`)

	// GAMEMODE:<hookName> and friends are prose, not tags.
	placeholderRe = regexp.MustCompile(`\b([A-Z][A-Z0-9_]*):\s*<([A-Za-z0-9_]+)>`)
)

// Normalize wraps raw wiki markup in a single root element and applies the
// escaping repairs. The result is still not guaranteed to be well formed;
// Parse decides whether what remains is tolerable.
func Normalize(raw string) string {
	s := "<root>" + raw + "</root>"

	for _, r := range textRepairs {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	s = openTagRe.ReplaceAllStringFunc(s, fixAttributes)
	s = placeholderRe.ReplaceAllString(s, "$1:&lt;$2&gt;")

	return s
}

// fixAttributes repairs the attribute list of one opening tag.
func fixAttributes(tag string) string {
	m := openTagRe.FindStringSubmatch(tag)
	name, attrs, selfClose := m[1], m[2], m[3]

	attrs = attrCommaDoubleRe.ReplaceAllString(attrs, `" `)
	attrs = attrCommaSingleRe.ReplaceAllString(attrs, `' `)
	attrs = strings.ReplaceAll(attrs, `\"`, "&quot;")
	attrs = strings.ReplaceAll(attrs, `\'`, "&apos;")
	attrs = strings.TrimRight(attrs, " ")
	attrs = quotedValueRe.ReplaceAllStringFunc(attrs, escapeAngles)

	return "<" + name + " " + attrs + selfClose + ">"
}

// escapeAngles escapes generic brackets in a quoted attribute value, as in
// type="table<Player>".
func escapeAngles(v string) string {
	v = strings.ReplaceAll(v, "<", "&lt;")
	return strings.ReplaceAll(v, ">", "&gt;")
}
