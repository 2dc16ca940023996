package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rolecomp/internal/diag"
)

type palette struct {
	err, warn, info, code, loc, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:  mk(color.FgRed, color.Bold),
		warn: mk(color.FgYellow, color.Bold),
		info: mk(color.FgCyan),
		code: mk(color.Faint),
		loc:  mk(color.Bold),
		note: mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем Notes с отступом.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		var head strings.Builder
		if loc := formatLocation(d.Location, opts.PathMode, opts.BaseDir); loc != "" {
			head.WriteString(p.loc.Sprint(loc))
			head.WriteString(": ")
		}
		head.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
		head.WriteByte(' ')
		head.WriteString(p.code.Sprint(d.Code.ID()))
		head.WriteString(": ")
		fmt.Fprintln(w, head.String()+clip(d.Message, opts.Width, runewidth.StringWidth(stripped(d, opts))))

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			line := "  " + p.note.Sprint("note") + ": "
			if loc := formatLocation(n.Location, opts.PathMode, opts.BaseDir); loc != "" && loc != formatLocation(d.Location, opts.PathMode, opts.BaseDir) {
				line += loc + ": "
			}
			fmt.Fprintln(w, line+clip(n.Msg, opts.Width, 8))
		}
	}
	errs, warns := bag.Count(diag.SevError), bag.Count(diag.SevWarning)
	if opts.Summary && (errs > 0 || warns > 0) {
		fmt.Fprintf(w, "%s, %s\n",
			p.err.Sprint(plural(errs, "error")), p.warn.Sprint(plural(warns, "warning")))
	}
}

// stripped is the uncolored header of d, used to budget the message width.
func stripped(d diag.Diagnostic, opts PrettyOpts) string {
	head := d.Severity.String() + " " + d.Code.ID() + ": "
	if loc := formatLocation(d.Location, opts.PathMode, opts.BaseDir); loc != "" {
		head = loc + ": " + head
	}
	return head
}

// clip truncates msg so that a line with a prefix of used columns fits width.
func clip(msg string, width uint16, used int) string {
	if width == 0 {
		return msg
	}
	room := int(width) - used
	if room <= 3 {
		return msg
	}
	if runewidth.StringWidth(msg) <= room {
		return msg
	}
	return runewidth.Truncate(msg, room, "...")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Short prints one line per diagnostic with the location column aligned.
func Short(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	items := bag.Items()
	locs := make([]string, len(items))
	col := 0
	for i, d := range items {
		locs[i] = formatLocation(d.Location, opts.PathMode, opts.BaseDir)
		col = max(col, runewidth.StringWidth(locs[i]))
	}
	for i, d := range items {
		fmt.Fprintf(w, "%s  %-7s %s %s\n", runewidth.FillRight(locs[i], col), d.Severity, d.Code.ID(), d.Message)
	}
}
