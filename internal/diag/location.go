package diag

import (
	"cmp"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// SourceKey identifies the origin of a piece of text, typically a file path.
type SourceKey string

// Location is a range inside one source. Start and End are rune offsets;
// Line and Column are 1-based. The zero Location marks generated nodes.
type Location struct {
	Source SourceKey `json:"source" msgpack:"source"`
	Start  int       `json:"start" msgpack:"start"`
	End    int       `json:"end" msgpack:"end"`
	Line   int       `json:"line" msgpack:"line"`
	Column int       `json:"column" msgpack:"column"`
}

// FromPosition converts a parser position. A nil position yields a
// generated location.
func FromPosition(pos *ast.Position) Location {
	if pos == nil {
		return Location{}
	}
	loc := Location{
		Start:  pos.Start,
		End:    pos.End,
		Line:   pos.Line,
		Column: pos.Column,
	}
	if pos.Src != nil {
		loc.Source = SourceKey(pos.Src.Name)
	}
	return loc
}

// IsGenerated reports whether the location does not point into any source.
func (l Location) IsGenerated() bool {
	return l.Source == "" && l.Line == 0
}

// Len returns the length of the range in runes (at least 1).
func (l Location) Len() int {
	return max(l.End-l.Start, 1)
}

func (l Location) String() string {
	if l.IsGenerated() {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// Compare orders locations by source, then start, then end.
func (l Location) Compare(o Location) int {
	return cmp.Or(
		cmp.Compare(l.Source, o.Source),
		cmp.Compare(l.Start, o.Start),
		cmp.Compare(l.End, o.End),
	)
}
