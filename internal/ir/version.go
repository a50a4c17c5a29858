package ir

// Version constants for the IR and the compiler.
const (
	// IRVersion changes whenever printed output or metadata layout changes.
	IRVersion = "1"

	// CompilerVersion is the gqlc release version.
	CompilerVersion = "0.1.0"
)
