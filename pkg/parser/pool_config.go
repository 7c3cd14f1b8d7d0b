package parser

import (
	"github.com/gnana997/gmodts/pkg/util"
)

// getDefaultPoolSize returns the parser pool size.
//
// It matches the extraction fan-out so `--check` and extras loading never
// wait on a parser while workers are idle.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
