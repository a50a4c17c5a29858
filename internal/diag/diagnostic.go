package diag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Severity ranks diagnostics. Higher is more severe.
type Severity int

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Related is a secondary location attached to a diagnostic.
type Related struct {
	Location Location `json:"location" msgpack:"location"`
	Message  string   `json:"message" msgpack:"message"`
}

// Diagnostic is a compile-time semantic error with source locations.
type Diagnostic struct {
	Code     Code      `json:"code" msgpack:"code"`
	Severity Severity  `json:"severity" msgpack:"severity"`
	Message  string    `json:"message" msgpack:"message"`
	Location Location  `json:"location" msgpack:"location"`
	Related  []Related `json:"related,omitempty" msgpack:"related,omitempty"`
}

// Errorf creates an error-severity diagnostic.
func Errorf(code Code, loc Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SevError,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// WithRelated appends a related location and returns d for chaining.
func (d *Diagnostic) WithRelated(loc Location, msg string) *Diagnostic {
	d.Related = append(d.Related, Related{Location: loc, Message: msg})
	return d
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Code, d.Code.Name(), d.Message)
}

// compareDiagnostics is the total order used for deterministic output.
func compareDiagnostics(a, b *Diagnostic) int {
	return cmp.Or(
		a.Location.Compare(b.Location),
		strings.Compare(a.Message, b.Message),
		cmp.Compare(a.Code, b.Code),
	)
}

// Diagnostics is an ordered diagnostic set. It implements error so that
// builders and transforms can return it in the error position.
type Diagnostics []*Diagnostic

// Error renders every diagnostic on its own line, sorted.
func (ds Diagnostics) Error() string {
	sorted := ds.Sorted()
	lines := make([]string, len(sorted))
	for i, d := range sorted {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Sorted returns a sorted copy. The receiver is not modified.
func (ds Diagnostics) Sorted() Diagnostics {
	out := slices.Clone(ds)
	slices.SortStableFunc(out, compareDiagnostics)
	return out
}

// Codes lists the codes in sorted order.
func (ds Diagnostics) Codes() []Code {
	sorted := ds.Sorted()
	codes := make([]Code, len(sorted))
	for i, d := range sorted {
		codes[i] = d.Code
	}
	return codes
}

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// As extracts the diagnostic set carried by err. A single *Diagnostic is
// returned as a one-element set.
func As(err error) (Diagnostics, bool) {
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return Diagnostics{d}, true
	}
	return nil, false
}
