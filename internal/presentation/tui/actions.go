package tui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"
)

// ActionRow is one line of the action listing.
type ActionRow struct {
	Name         string
	PlatformName string
	Feature      string
	Guards       []string
	HasDefault   bool
}

// PrintActions renders the registry as an aligned table.
func PrintActions(w io.Writer, rows []ActionRow) {
	p := termenv.ColorProfile()
	header := termenv.String("ACTION\tPLATFORM\tFEATURE\tVARIANTS").Bold()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		variants := []string{}
		for _, g := range r.Guards {
			variants = append(variants, termenv.String(g).Foreground(p.Color("#a78bfa")).String())
		}
		if r.HasDefault {
			variants = append(variants, termenv.String("default").Faint().String())
		}
		if len(variants) == 0 {
			variants = append(variants, "any")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			termenv.String(r.Name).Foreground(p.Color("#818cf8")),
			r.PlatformName, r.Feature, strings.Join(variants, ", "))
	}
	tw.Flush()
}

// PrintMatch renders a successful resolution.
func PrintMatch(w io.Writer, identifier, action, rule string) {
	p := termenv.ColorProfile()
	fmt.Fprintf(w, "%s -> %s (%s)\n",
		identifier,
		termenv.String(action).Foreground(p.Color("#34d399")).Bold(),
		termenv.String(rule).Faint())
}

// PrintNoMatch renders a failed resolution.
func PrintNoMatch(w io.Writer, input string) {
	p := termenv.ColorProfile()
	fmt.Fprintf(w, "%s -> %s\n", input, termenv.String("no action").Foreground(p.Color("#fb7185")))
}
