package diag

// Code identifies a diagnostic kind.
type Code string

// Parse and schema loading errors (E0xx)
const (
	ErrSyntax     Code = "E001" // parser rejected the document
	ErrSchemaLoad Code = "E002" // schema SDL failed to load
)

// Schema validation errors raised while building the IR (E2xx)
const (
	// Definitions (E201-E205)
	ErrExpectedOperationName Code = "E201" // operation has no name
	ErrUnsupportedOperation  Code = "E202" // schema has no root type for the operation kind
	ErrDuplicateDefinition   Code = "E203" // two fragments or two operations share a name
	ErrUnknownType           Code = "E204" // type name not in schema
	ErrInvalidTypeCondition  Code = "E205" // type condition is not a composite type

	// Selections (E206-E208)
	ErrUnknownField         Code = "E206" // field not defined on parent type
	ErrMissingSelections    Code = "E207" // composite field without selection set
	ErrUnexpectedSelections Code = "E208" // leaf field with selection set

	// Arguments and values (E209-E212)
	ErrUnknownArgument         Code = "E209"
	ErrDuplicateArgument       Code = "E210"
	ErrMissingRequiredArgument Code = "E211"
	ErrInvalidValue            Code = "E212" // literal does not match input type

	// Fragments (E213-E215)
	ErrUndefinedFragment     Code = "E213"
	ErrInvalidFragmentSpread Code = "E214" // type conditions cannot overlap
	ErrFragmentCycle         Code = "E215"

	// Directives (E216-E218)
	ErrUnknownDirective   Code = "E216"
	ErrMisplacedDirective Code = "E217"
	ErrRepeatedDirective  Code = "E218"

	// Variables (E220-E224)
	ErrInvalidVariableType  Code = "E220" // variable type is not an input type
	ErrDuplicateVariable    Code = "E221"
	ErrUndefinedVariable    Code = "E222"
	ErrUnusedVariable       Code = "E223"
	ErrVariableTypeMismatch Code = "E224"

	// @required resolution (E240-E241)
	ErrRequiredActionNotLiteral Code = "E240" // action given as a variable
	ErrUnknownRequiredAction    Code = "E241" // action outside THROW/LOG/CATCH
)

// Required-directive transform errors (E3xx)
const (
	ErrInvalidRequiredOnNonNullable Code = "E301"
)

var codeNames = map[Code]string{
	ErrSyntax:                       "SyntaxError",
	ErrSchemaLoad:                   "SchemaLoadError",
	ErrExpectedOperationName:        "ExpectedOperationName",
	ErrUnsupportedOperation:         "UnsupportedOperation",
	ErrDuplicateDefinition:          "DuplicateDefinition",
	ErrUnknownType:                  "UnknownType",
	ErrInvalidTypeCondition:         "InvalidTypeCondition",
	ErrUnknownField:                 "UnknownField",
	ErrMissingSelections:            "ExpectedSelectionsOnObjectField",
	ErrUnexpectedSelections:         "UnexpectedSelectionsOnScalarField",
	ErrUnknownArgument:              "UnknownArgument",
	ErrDuplicateArgument:            "DuplicateArgument",
	ErrMissingRequiredArgument:      "MissingRequiredArgument",
	ErrInvalidValue:                 "InvalidValue",
	ErrUndefinedFragment:            "UndefinedFragment",
	ErrInvalidFragmentSpread:        "InvalidFragmentSpread",
	ErrFragmentCycle:                "FragmentCycle",
	ErrUnknownDirective:             "UnknownDirective",
	ErrMisplacedDirective:           "MisplacedDirective",
	ErrRepeatedDirective:            "RepeatedDirective",
	ErrInvalidVariableType:          "InvalidVariableType",
	ErrDuplicateVariable:            "DuplicateVariable",
	ErrUndefinedVariable:            "UndefinedVariable",
	ErrUnusedVariable:               "UnusedVariable",
	ErrVariableTypeMismatch:         "VariableTypeMismatch",
	ErrRequiredActionNotLiteral:     "RequiredActionNotLiteral",
	ErrUnknownRequiredAction:        "UnknownRequiredAction",
	ErrInvalidRequiredOnNonNullable: "InvalidRequiredOnNonNullable",
}

// Name returns the symbolic name of the code, or the code itself when
// unknown.
func (c Code) Name() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return string(c)
}

// Family returns the error-taxonomy family of the code.
func (c Code) Family() string {
	if len(c) < 2 {
		return "Unknown"
	}
	switch c[1] {
	case '0':
		if c == ErrSyntax {
			return "SyntaxError"
		}
		return "SchemaLoadError"
	case '2':
		return "SchemaValidationError"
	case '3':
		return "RequiredDirectiveError"
	default:
		return "Unknown"
	}
}
