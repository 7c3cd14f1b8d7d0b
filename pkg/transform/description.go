package transform

import (
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/wiki"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// descriptionRewrites turn the wiki's inline markup into doc comment prose.
// They run in order, before any remaining tags are stripped.
var descriptionRewrites = []rewrite{
	{regexp.MustCompile(`(?is)<page\b[^>]*\btext="([^"]+)"[^>]*>.*?</page>`), "$1"},
	{regexp.MustCompile(`(?is)<page\b[^>]*>(.*?)</page>`), "$1"},
	{regexp.MustCompile(`(?is)<note>(.*?)</note>`), "\n\nNote: $1\n\n"},
	{regexp.MustCompile(`(?is)<warning>(.*?)</warning>`), "\n\nWarning: $1\n\n"},
	{regexp.MustCompile(`(?is)<bug\b[^>]*>(.*?)</bug>`), "\n\nBug: $1\n\n"},
	{regexp.MustCompile(`(?is)<internal>(.*?)</internal>`), "\n\nInternal: $1\n\n"},
	{regexp.MustCompile(`(?is)<removed>(.*?)</removed>`), "\n\nRemoved: $1\n\n"},
	{regexp.MustCompile(`(?is)<deprecated>(.*?)</deprecated>`), "\n\n@deprecated $1\n\n"},
	{regexp.MustCompile(`(?is)<validate>(.*?)</validate>`), "\n\nValidate: $1\n\n"},
	{regexp.MustCompile(`(?is)<key>(.*?)</key>`), "`$1`"},
	{regexp.MustCompile(`(?is)<example>\s*(?:<description>(.*?)</description>)?\s*<code>(.*?)</code>.*?</example>`), "\n\n@example $1\n```lua\n$2\n```\n\n"},
	{regexp.MustCompile(`(?is)<code>(.*?)</code>`), "\n```lua\n$1\n```\n"},
	{regexp.MustCompile(`(?is)<callback>.*?</callback>`), ""},
}

var (
	anyTagRe      = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9_:-]*(\s[^<>]*)?/?>`)
	blankLinesRe  = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+\n`)
	trailingWSRe  = regexp.MustCompile(`(?m)[ \t]+$`)
	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&grave;", "`",
		"&amp;", "&",
	)
)

// RealmBadge renders the realm prefix of a doc comment, or "" for none.
func RealmBadge(realm wiki.Realm) string {
	if realm == "" {
		return ""
	}
	return "[" + string(realm) + "]"
}

// TransformDescription converts wiki description markup into plain doc
// comment text. Consecutive blank lines collapse to one and the comment
// terminator is escaped.
func TransformDescription(desc string) string {
	out := strings.ReplaceAll(desc, "\r\n", "\n")
	for _, r := range descriptionRewrites {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	out = anyTagRe.ReplaceAllString(out, "")
	out = UnescapeEntities(out)
	out = strings.ReplaceAll(out, "*/", `*\/`)
	out = trailingWSRe.ReplaceAllString(out, "")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// UnescapeEntities decodes the entities the markup normalizer may leave in
// raw attribute or description text.
func UnescapeEntities(s string) string {
	return entityDecoder.Replace(s)
}

// joinDoc joins non-blank doc comment parts with a blank line.
func joinDoc(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
