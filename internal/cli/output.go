package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/gqlc/internal/diag"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // At least one document was rejected
	ExitCommandError = 2 // Command error (bad flags, missing schema, unreadable config, etc.)
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.Faint)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E901", "E902", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// DocumentReport is the outcome for one document.
type DocumentReport struct {
	Source string `json:"source"`
	Status string `json:"status"` // "ok" or "error"

	// Output is the printed program; empty for validate and on failure.
	Output string `json:"output,omitempty"`

	// Diagnostics is the canonical JSON encoding of the sorted
	// diagnostics.
	Diagnostics json.RawMessage `json:"diagnostics,omitempty"`

	// Error holds a failure that is not a diagnostic set.
	Error string `json:"error,omitempty"`

	Cached bool `json:"cached,omitempty"`

	diags diag.Diagnostics
}

// Failed reports whether the document was rejected.
func (r *DocumentReport) Failed() bool {
	return r.Status != "ok"
}

// newReport builds the report for a document from its output or error.
func newReport(source diag.SourceKey, output string, err error) DocumentReport {
	r := DocumentReport{Source: string(source), Status: "ok", Output: output}
	if err == nil {
		return r
	}

	r.Status = "error"
	r.Output = ""
	ds, ok := diag.As(err)
	if !ok {
		r.Error = err.Error()
		return r
	}
	r.diags = ds
	if data, merr := ds.MarshalCanonical(); merr == nil {
		r.Diagnostics = data
	} else {
		r.Error = ds.Error()
	}
	return r
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	failColor.Fprint(f.Writer, "Error")
	fmt.Fprintf(f.Writer, " [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Documents outputs one report per document. In text mode each document
// gets a status line followed by its output or its rendered diagnostics.
func (f *OutputFormatter) Documents(reports []DocumentReport, sources diag.Sources) error {
	if f.Format == "json" {
		status := "ok"
		for i := range reports {
			if reports[i].Failed() {
				status = "error"
				break
			}
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: status, Data: reports})
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		if r.Failed() {
			failColor.Fprint(f.Writer, "✗")
		} else {
			okColor.Fprint(f.Writer, "✓")
		}
		fmt.Fprintf(f.Writer, " %s", r.Source)
		if r.Cached {
			noteColor.Fprint(f.Writer, " (cached)")
		}
		fmt.Fprintln(f.Writer)

		switch {
		case r.diags != nil:
			fmt.Fprintln(f.Writer, r.diags.SortedString(sources))
		case r.Error != "":
			fmt.Fprintln(f.Writer, r.Error)
		case r.Output != "":
			fmt.Fprintln(f.Writer, r.Output)
		}
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// commandError reports a command-level failure and returns the matching
// exit error.
func commandError(f *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = f.Error(code, message, nil)
	return WrapExitError(ExitCommandError, code, err)
}
