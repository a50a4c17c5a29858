package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gqlc/internal/compiler"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [documents...]",
		Short: "Validate documents without running transforms",
		Long: `Validate GraphQL documents against the schema.

Runs only the IR builder: every validation error in a document is
reported, but no transform runs and nothing is printed on success.
Faster than compile for editor feedback.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	project, err := LoadProject(opts, args)
	if err != nil {
		return commandError(formatter, err)
	}

	reports := make([]DocumentReport, len(project.Inputs))
	for i, in := range project.Inputs {
		if in.Doc == nil {
			reports[i] = newReport(in.Key, "", in.Err)
			continue
		}
		formatter.VerboseLog("Validating %s", in.Key)
		_, err := compiler.Build(project.Schema, in.Doc)
		reports[i] = newReport(in.Key, "", err)
	}

	if err := formatter.Documents(reports, project.Sources()); err != nil {
		return err
	}
	return failureExit(reports)
}
