package diag

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Sources maps source keys to their full text for excerpt rendering.
type Sources map[SourceKey]string

// SortedString renders the diagnostics in sorted order. Each diagnostic is
// a header line, a location line, an optional caret excerpt and one note
// line per related location. Blocks are separated by a blank line. The
// output is byte-identical for equal inputs.
func (ds Diagnostics) SortedString(sources Sources) string {
	sorted := ds.Sorted()
	blocks := make([]string, len(sorted))
	for i, d := range sorted {
		blocks[i] = formatDiagnostic(d, sources)
	}
	return strings.Join(blocks, "\n\n")
}

func formatDiagnostic(d *Diagnostic, sources Sources) string {
	var b strings.Builder
	b.WriteString(string(d.Code))
	b.WriteByte(' ')
	b.WriteString(d.Code.Name())
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteString("\n  --> ")
	b.WriteString(d.Location.String())

	if text, ok := sources[d.Location.Source]; ok && !d.Location.IsGenerated() {
		writeExcerpt(&b, text, d.Location)
	}
	for _, rel := range d.Related {
		b.WriteString("\n  note: ")
		b.WriteString(rel.Location.String())
		b.WriteString(": ")
		b.WriteString(rel.Message)
	}
	return b.String()
}

// writeExcerpt renders the offending line and a caret underline. Line and
// column are clamped to the text so malformed locations never panic.
func writeExcerpt(b *strings.Builder, text string, loc Location) {
	lines := strings.Split(text, "\n")
	if loc.Line < 1 || loc.Line > len(lines) {
		return
	}
	line := []rune(strings.TrimSuffix(lines[loc.Line-1], "\r"))
	col := min(max(loc.Column, 1), len(line)+1)

	prefix := line[:col-1]
	span := line[col-1 : min(col-1+loc.Len(), len(line))]

	lineNo := strconv.Itoa(loc.Line)
	gutter := strings.Repeat(" ", len(lineNo))

	b.WriteString("\n  ")
	b.WriteString(lineNo)
	b.WriteString(" | ")
	b.WriteString(string(line))
	b.WriteString("\n  ")
	b.WriteString(gutter)
	b.WriteString(" | ")
	b.WriteString(caretPadding(prefix))
	b.WriteString(strings.Repeat("^", max(runewidth.StringWidth(string(span)), 1)))
}

// caretPadding mirrors prefix as whitespace of equal display width. Tabs
// are kept so the caret lines up regardless of tab stops.
func caretPadding(prefix []rune) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
