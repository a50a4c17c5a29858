package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gqlc/internal/cache"
	"github.com/roach88/gqlc/internal/config"
)

// CacheEntry describes one cache row for listing.
type CacheEntry struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	RunID  string `json:"run_id"`
	Seq    int64  `json:"seq"`
	Failed bool   `json:"failed"`
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the compile cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List cached results in write order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(cmd.Context(), rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "prune",
		Short:         "Delete results written by other compiler versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCachePrune(cmd.Context(), rootOpts, cmd)
		},
	})

	return cmd
}

// openCache resolves the cache path from --cache or the config file.
func openCache(opts *RootOptions) (*cache.Cache, error) {
	path := opts.Cache
	if path == "" && opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
		}
		path = cfg.Cache
	}
	if path == "" {
		return nil, &LoadError{Code: ErrCodeCache, Message: "no cache: pass --cache or set cache in the config file"}
	}

	c, err := cache.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCache, Message: err.Error(), Err: err}
	}
	return c, nil
}

func runCacheList(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}

	c, err := openCache(opts)
	if err != nil {
		return commandError(formatter, err)
	}
	defer c.Close()

	rows, err := c.Rows(ctx)
	if err != nil {
		return commandError(formatter, err)
	}

	entries := make([]CacheEntry, len(rows))
	for i, r := range rows {
		entries[i] = CacheEntry{
			Key:    r.Key,
			Source: string(r.Source),
			RunID:  r.RunID,
			Seq:    r.Seq,
			Failed: r.Entry.Failed(),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	for _, e := range entries {
		status := "ok"
		if e.Failed {
			status = "error"
		}
		fmt.Fprintf(formatter.Writer, "%6d  %s  %-5s  %s\n", e.Seq, e.Key[:12], status, e.Source)
	}
	return nil
}

func runCachePrune(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}

	c, err := openCache(opts)
	if err != nil {
		return commandError(formatter, err)
	}
	defer c.Close()

	n, err := c.Prune(ctx)
	if err != nil {
		return commandError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]int64{"pruned": n})
	}
	fmt.Fprintf(formatter.Writer, "Pruned %d entr%s\n", n, pluralY(n))
	return nil
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
