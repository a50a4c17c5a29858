package diag

import (
	"errors"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// FromParserError converts an error returned by gqlparser into diagnostics
// with the given code. Errors without a file extension are attributed to
// fallback. Errors that did not come from gqlparser yield a single
// generated-location diagnostic.
func FromParserError(code Code, fallback SourceKey, err error) Diagnostics {
	if err == nil {
		return nil
	}
	var list gqlerror.List
	if errors.As(err, &list) {
		out := make(Diagnostics, 0, len(list))
		for _, e := range list {
			out = append(out, fromGQLError(code, fallback, e))
		}
		return out
	}
	var single *gqlerror.Error
	if errors.As(err, &single) {
		return Diagnostics{fromGQLError(code, fallback, single)}
	}
	return Diagnostics{Errorf(code, Location{Source: fallback}, "%s", err.Error())}
}

func fromGQLError(code Code, fallback SourceKey, e *gqlerror.Error) *Diagnostic {
	loc := Location{Source: fallback}
	if file, ok := e.Extensions["file"].(string); ok && file != "" {
		loc.Source = SourceKey(file)
	}
	if len(e.Locations) > 0 {
		loc.Line = e.Locations[0].Line
		loc.Column = e.Locations[0].Column
	}
	return Errorf(code, loc, "%s", e.Message)
}
