package harness

import (
	"strings"

	"github.com/roach88/gqlc/internal/diag"
)

// InvalidSuffix marks fixtures that are expected to fail.
const InvalidSuffix = ".invalid"

// Fixture is one fixture file.
type Fixture struct {
	// Name is the file name without the .graphql extension. It names the
	// golden file.
	Name string

	// FileName is the base file name, used as the document's source key.
	FileName string

	Content string
}

// ExpectsError reports whether the fixture is expected to fail.
func (f *Fixture) ExpectsError() bool {
	return strings.HasSuffix(f.Name, InvalidSuffix)
}

// DiagnosticsError is returned by TransformFixture when the document is
// rejected. Its message is the sorted rendering of the diagnostics.
type DiagnosticsError struct {
	Rendered    string
	Diagnostics diag.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return e.Rendered
}
