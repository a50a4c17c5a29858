package harness

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

const bannerWidth = 79

// banner centers label in a rule of '=' characters.
func banner(label string) string {
	left := 36
	right := bannerWidth - left - len(label) - 2
	return strings.Repeat("=", left) + " " + label + " " + strings.Repeat("=", right)
}

// Render formats a fixture run as golden text: the input, then either the
// output or the error.
func Render(f *Fixture, output string, err error) string {
	var b strings.Builder
	b.WriteString(banner("INPUT"))
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(f.Content, "\n"))
	b.WriteByte('\n')
	if err != nil {
		b.WriteString(banner("ERROR"))
		b.WriteByte('\n')
		b.WriteString(err.Error())
	} else {
		b.WriteString(banner("OUTPUT"))
		b.WriteByte('\n')
		b.WriteString(output)
	}
	b.WriteByte('\n')
	return b.String()
}

// Run transforms the fixture and checks the outcome against its name:
// .invalid fixtures must be rejected and all others must succeed. It
// returns the golden text.
func Run(f *Fixture) (string, error) {
	output, err := TransformFixture(f)

	var rejectedErr *DiagnosticsError
	switch {
	case err != nil && !errors.As(err, &rejectedErr):
		return "", err
	case f.ExpectsError() && err == nil:
		return "", fmt.Errorf("fixture %s is marked %s but compiled successfully", f.Name, InvalidSuffix)
	case !f.ExpectsError() && err != nil:
		return "", fmt.Errorf("fixture %s failed unexpectedly:\n%w", f.Name, err)
	}
	return Render(f, output, err), nil
}

// RunWithGolden runs a fixture and compares the result against
// testdata/golden/{fixture.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the fixture cannot be run or its outcome contradicts
// its name. A golden mismatch fails t through goldie.
func RunWithGolden(t *testing.T, f *Fixture) error {
	t.Helper()

	got, err := Run(f)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, f.Name, []byte(got))
	return nil
}
