package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ilpatch/internal/diag"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	codeColor = color.New(color.Faint)
	subjColor = color.New(color.Bold)
)

// Pretty writes diagnostics in a human-readable form, one per line:
//
//	ERROR [SCAN1003] DuplicateSubstitution: <message>
//	    at <module> :: <subject>
//
// followed by indented notes when ShowNotes is set. Call bag.Sort()
// beforehand for deterministic output.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	for _, d := range bag.Items() {
		sev := d.Severity.String()
		line := fmt.Sprintf("%s [%s] %s: %s",
			paint(opts, sevColor(d.Severity), sev),
			paint(opts, codeColor, d.Code.ID()),
			d.Code.Ident(),
			d.Message)
		fmt.Fprintln(w, line)
		if d.Subject != "" {
			loc := d.Subject
			if d.Module != "" {
				loc = d.Module + " :: " + loc
			}
			fmt.Fprintf(w, "    at %s\n", paint(opts, subjColor, loc))
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "    note: %s", n.Msg)
				if n.Subject != "" {
					fmt.Fprintf(w, " (%s)", n.Subject)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

// Summary writes a one-line tally, aligned for terminals.
func Summary(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	label := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	pad := 40 - runewidth.StringWidth(label)
	for pad > 0 {
		fmt.Fprint(w, " ")
		pad--
	}
	if errs > 0 {
		fmt.Fprintln(w, paint(opts, errColor, label))
	} else {
		fmt.Fprintln(w, label)
	}
}

func sevColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func paint(opts PrettyOpts, c *color.Color, s string) string {
	if !opts.Color {
		return s
	}
	return c.Sprint(s)
}
