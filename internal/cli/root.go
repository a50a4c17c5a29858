package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is the project file; flags below override its values.
	Config string

	Schema         []string
	RequiredPrefix string
	Parallelism    int

	// Cache is the compile cache database; empty uses the config value.
	Cache string

	// requiredPrefixSet distinguishes --required-prefix "" from an absent
	// flag.
	requiredPrefixSet bool
	parallelismSet    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gqlc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gqlc",
		Short: "gqlc - GraphQL document compiler",
		Long: `Compile GraphQL executable documents against a schema.

Documents are validated into a typed IR, run through the transform
pipeline (constant condition pruning, @required bubbling) and printed
back as canonical GraphQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.requiredPrefixSet = cmd.Flags().Changed("required-prefix")
			opts.parallelismSet = cmd.Flags().Changed("parallelism")
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "project config file (.yaml, .toml, .cue or .json)")
	cmd.PersistentFlags().StringSliceVarP(&opts.Schema, "schema", "s", nil, "schema SDL file (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.RequiredPrefix, "required-prefix", "",
		"enable the @required transform for definitions with this name prefix (\"\" for all)")
	cmd.PersistentFlags().IntVarP(&opts.Parallelism, "parallelism", "j", 0, "documents compiled at once (0 = GOMAXPROCS)")
	cmd.PersistentFlags().StringVar(&opts.Cache, "cache", "", "compile cache database (SQLite)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger returns a text logger on w. Verbose mode logs every stage at
// debug level; otherwise only warnings and errors are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
