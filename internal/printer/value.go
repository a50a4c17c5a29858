package printer

import (
	"fmt"
	"strings"

	"github.com/roach88/gqlc/internal/ir"
)

// value prints v in GraphQL literal syntax. Nesting depth of literals is
// bounded by the source text, so plain recursion is used here.
func (w *writer) value(v ir.Value) {
	switch v.Kind {
	case ir.ValueNull:
		w.WriteString("null")
	case ir.ValueInt, ir.ValueFloat, ir.ValueBoolean, ir.ValueEnum:
		w.WriteString(v.Raw)
	case ir.ValueString:
		w.WriteString(Quote(v.Raw))
	case ir.ValueVariable:
		w.WriteByte('$')
		w.WriteString(v.Raw)
	case ir.ValueList:
		w.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				w.WriteString(", ")
			}
			w.value(item)
		}
		w.WriteByte(']')
	case ir.ValueObject:
		w.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(f.Name)
			w.WriteString(": ")
			w.value(f.Value)
		}
		w.WriteByte('}')
	default:
		panic(fmt.Sprintf("printer: unrecognized value kind %d", v.Kind))
	}
}

// Quote returns s as a GraphQL string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
