package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/printer"
)

const maxWidth = 80

var inspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Show a collection, enum, global or game event from the model",
	Long: `Look up one entry in the generated model and print it.

Collections (classes, structs, libraries) are matched case-insensitively;
enums, globals and game events by exact name.

Examples:
  gmodts inspect Entity
  gmodts inspect math --declaration
  gmodts inspect TEXT_ALIGN
  gmodts inspect player_spawn`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var (
	inspectModel       string
	inspectDeclaration bool
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectModel, "model", "", "Model file (overrides paths.model)")
	inspectCmd.Flags().BoolVar(&inspectDeclaration, "declaration", false, "Print the TypeScript declaration instead of a summary")
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	qs, err := loadModel(p, inspectModel)
	if err != nil {
		return err
	}
	return inspect(cmd.OutOrStdout(), qs, printer.New(nil, p.logger), args[0], inspectDeclaration)
}

func inspect(w io.Writer, qs *catalog.QueryService, pr *printer.Printer, name string, declaration bool) error {
	if col, kind, ok := qs.GetCollection(name); ok {
		if declaration {
			decl, err := pr.Collection(*col)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, decl)
			return nil
		}
		printCollectionHuman(w, col, kind)
		return nil
	}
	if e, ok := qs.GetEnum(name); ok {
		if declaration {
			fmt.Fprintln(w, pr.Enum(*e))
			return nil
		}
		printEnumHuman(w, e)
		return nil
	}
	if fn, ok := qs.GetGlobal(name); ok {
		fmt.Fprintf(w, "%s  [global]\n", fn.Identifier)
		printDoc(w, fn.DocComment)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", catalog.Signature(*fn))
		return nil
	}
	if ev, ok := qs.GetGameEvent(name); ok {
		fmt.Fprintf(w, "%s  [game event]\n", ev.Key)
		printDoc(w, ev.DocComment)
		fmt.Fprintln(w)
		printFieldsSection(w, "Fields", ev.Fields)
		return nil
	}
	return fmt.Errorf("%q not found in model", name)
}

// printCollectionHuman prints a human-readable collection summary.
func printCollectionHuman(w io.Writer, col *catalog.Collection, kind string) {
	header := col.Identifier
	if col.Parent != "" {
		header += " extends " + col.Parent
	}
	fmt.Fprintf(w, "%s  [%s]\n", header, kind)
	printDoc(w, col.DocComment)

	fmt.Fprintln(w)
	printFieldsSection(w, "Fields", col.Fields)

	fmt.Fprintln(w)
	if len(col.Functions) == 0 {
		fmt.Fprintln(w, "Functions  (none)")
	} else {
		fmt.Fprintln(w, "Functions")
		for _, fn := range col.Functions {
			opt := ""
			if fn.Optional {
				opt = "  [optional]"
			}
			fmt.Fprintf(w, "  %s%s\n", catalog.Signature(fn), opt)
		}
	}

	if len(col.InnerCollections) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Nested")
		nameWidth := 0
		for _, inner := range col.InnerCollections {
			nameWidth = max(nameWidth, len(inner.Identifier))
		}
		for _, inner := range col.InnerCollections {
			padding := strings.Repeat(" ", nameWidth-len(inner.Identifier))
			fmt.Fprintf(w, "  %s%s  %d functions, %d fields\n",
				inner.Identifier, padding, len(inner.Functions), len(inner.Fields))
		}
	}
}

func printEnumHuman(w io.Writer, e *catalog.Enum) {
	kind := "enum"
	if e.CompileMembersOnly {
		kind = "const enum"
	}
	fmt.Fprintf(w, "%s  [%s]\n", e.Identifier, kind)
	printDoc(w, e.DocComment)

	fmt.Fprintln(w)
	nameWidth := 0
	for _, f := range e.Fields {
		nameWidth = max(nameWidth, len(f.Identifier))
	}
	for _, f := range e.Fields {
		fmt.Fprintf(w, "  %-*s  = %s\n", nameWidth, f.Identifier, f.Value)
	}
}

// printFieldsSection renders the fields table with dynamic column widths.
func printFieldsSection(w io.Writer, title string, fields []catalog.Field) {
	if len(fields) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	nameW := len("NAME")
	typeW := len("TYPE")
	for _, f := range fields {
		nameW = max(nameW, len(f.Identifier))
		typeW = max(typeW, len(f.Type))
	}

	fmt.Fprintf(w, "  %-*s  %-*s  %s\n", nameW, "NAME", typeW, "TYPE", "OPT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", nameW+typeW+7))

	for _, f := range fields {
		opt := "no"
		if f.Optional {
			opt = "yes"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %s\n", nameW, f.Identifier, typeW, f.Type, opt)
	}
}

// printDoc prints the first paragraph of a doc comment, skipping tag lines.
func printDoc(w io.Writer, doc string) {
	var prose []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(prose) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "@") {
			continue
		}
		prose = append(prose, line)
	}
	if len(prose) == 0 {
		return
	}
	fmt.Fprintln(w)
	printWrapped(w, strings.Join(prose, " "), 0, maxWidth)
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	words := strings.Fields(text)
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != prefix {
			fmt.Fprintln(w, line)
			line = prefix + word
		} else if line == prefix {
			line += word
		} else {
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
