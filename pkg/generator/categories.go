package generator

import (
	"regexp"
	"strings"
)

// Wiki categories the generator reads.
const (
	CategoryGlobal      = "Global"
	CategoryEnum        = "enum"
	CategoryStruct      = "struct"
	CategoryClassFunc   = "classfunc"
	CategoryPanelFunc   = "panelfunc"
	CategoryPanel       = "panel"
	CategoryClass       = "class"
	CategoryHook        = "hook"
	CategoryLibraryFunc = "libraryfunc"
	CategoryGameEvent   = "gameevent"
)

// DefaultGameEventPage is the overview page whose description documents
// the game event map.
const DefaultGameEventPage = "/gmod/gameevent"

// DefaultHookIndexPaths are the hook container pages. They are not listed
// in any category and are fetched by path.
var DefaultHookIndexPaths = []string{
	"/gmod/GM_Hooks",
	"/gmod/ENTITY_Hooks",
	"/gmod/WEAPON_Hooks",
	"/gmod/TOOL_Hooks",
	"/gmod/EFFECT_Hooks",
	"/gmod/PLAYER_Hooks",
	"/gmod/SANDBOX_Hooks",
}

var (
	hookMemberEncodedRe = regexp.MustCompile(`/gmod/[A-Z]+%3A`)
	hookMemberRe        = regexp.MustCompile(`[A-Z]+:`)
	gameEventPathRe     = regexp.MustCompile(`^/gmod/gameevent/[A-Za-z0-9_]+$`)
)

// isHookMemberPath reports whether a hook-category path is a member page
// such as /gmod/GM:PlayerSpawn rather than an overview.
func isHookMemberPath(p string) bool {
	return hookMemberEncodedRe.MatchString(p) || hookMemberRe.MatchString(p)
}

func isGameEventPath(p string) bool {
	return gameEventPathRe.MatchString(p)
}

// isMemberTitle reports whether a page title names a member ("Parent:Name"
// or "lib.Name") rather than its container.
func isMemberTitle(title string) bool {
	return strings.ContainsAny(title, ":.")
}

// isLibraryMemberTitle reports whether a libraryfunc title names a
// function. Library overview pages have no dot.
func isLibraryMemberTitle(title string) bool {
	return strings.Contains(title, ".")
}

// dedupe drops repeated paths, keeping first-seen order.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, p := range list {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func filter(paths []string, keep func(string) bool) []string {
	var out []string
	for _, p := range paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
