package generator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/parser/queries"
)

// Header opens every generated declaration file.
var Header = []string{
	`/// <reference types="typescript-to-lua/language-extensions" />`,
	`/// <reference path="./extras.d.ts" />`,
	`/** @noSelfInFile **/`,
}

var trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)

// Render prints the model in section order: classes, structs, enums, the
// hook enum, game events, globals and libraries.
func (g *Generator) Render(cat *catalog.Catalog) (string, error) {
	classes, err := g.printer.Collections(cat.Classes)
	if err != nil {
		return "", fmt.Errorf("print classes: %w", err)
	}
	structs, err := g.printer.Collections(cat.Structs)
	if err != nil {
		return "", fmt.Errorf("print structs: %w", err)
	}
	var hookEnum string
	if cat.HookEnum != nil {
		hookEnum = g.printer.Enum(*cat.HookEnum)
	}
	globals, err := g.printer.Globals(cat.Globals)
	if err != nil {
		return "", fmt.Errorf("print globals: %w", err)
	}
	libraries, err := g.printer.Collections(cat.Libraries)
	if err != nil {
		return "", fmt.Errorf("print libraries: %w", err)
	}

	sections := []string{
		strings.Join(Header, "\n"),
		classes,
		structs,
		g.printer.Enums(cat.Enums),
		hookEnum,
		g.printer.TypeMap(cat.GameEvents),
		globals,
		libraries,
	}

	var kept []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return Finalize(strings.Join(kept, "\n\n")), nil
}

// Finalize normalizes line endings, strips trailing whitespace from every
// line and ends the text with exactly one newline.
func Finalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = trailingSpaceRe.ReplaceAllString(s, "")
	return strings.TrimRight(s, " \t\r\n") + "\n"
}

// Check parses the output as TypeScript and returns its syntax errors.
func Check(qm *queries.QueryManager, output string) ([]queries.SyntaxError, error) {
	return qm.SyntaxErrors([]byte(output))
}

// WriteIfChanged writes content to path unless the file already holds the
// same bytes. It reports whether the file was written.
func WriteIfChanged(path, content string) (bool, error) {
	existing, err := hashFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("hash %s: %w", path, err)
	}
	if err == nil && existing == xxh3.HashString(content) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write output: %w", err)
	}
	return true, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
