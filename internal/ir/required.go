package ir

import (
	"fmt"
	"strings"
)

// RequiredAction is the closed set of reactions to a missing required
// field, ordered by severity.
type RequiredAction uint8

const (
	ActionCatch RequiredAction = iota + 1
	ActionLog
	ActionThrow
)

// ParseRequiredAction resolves an enum literal.
func ParseRequiredAction(s string) (RequiredAction, bool) {
	switch s {
	case "THROW":
		return ActionThrow, true
	case "LOG":
		return ActionLog, true
	case "CATCH":
		return ActionCatch, true
	default:
		return 0, false
	}
}

func (a RequiredAction) String() string {
	switch a {
	case ActionThrow:
		return "THROW"
	case ActionLog:
		return "LOG"
	case ActionCatch:
		return "CATCH"
	default:
		return fmt.Sprintf("RequiredAction(%d)", uint8(a))
	}
}

// MostSevere returns the more severe of a and b.
func MostSevere(a, b RequiredAction) RequiredAction {
	return max(a, b)
}

// RequiredPath is one required field reachable from a boundary. Path holds
// response keys from the boundary down to the field.
type RequiredPath struct {
	Path   []string
	Action RequiredAction
}

func (p RequiredPath) String() string {
	return strings.Join(p.Path, ".") + ": " + p.Action.String()
}

// RequiredMetadata is attached at an absorbing boundary. Action is the
// most severe action among Paths; Paths are in post-order (a nested
// required field precedes the required field enclosing it).
type RequiredMetadata struct {
	Action RequiredAction
	Paths  []RequiredPath
}

func (m *RequiredMetadata) String() string {
	if m == nil {
		return "<none>"
	}
	parts := make([]string, len(m.Paths))
	for i, p := range m.Paths {
		parts[i] = p.String()
	}
	return fmt.Sprintf("@required(action: %s) from [%s]", m.Action, strings.Join(parts, ", "))
}
