package cmd

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
)

var rawMarkdown = flag.Bool("raw", false, "print markdown as is, without terminal styling")

// printMarkdown prints a markdown document styled for the terminal.
func printMarkdown(doc string) {
	if *rawMarkdown {
		fmt.Fprint(stdout, doc)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(160),
	)
	if err != nil {
		fmt.Fprint(stdout, doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Fprint(stdout, doc)
		return
	}
	fmt.Fprint(stdout, out)
}

// printJSON prints v as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
