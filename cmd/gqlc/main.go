// Command gqlc compiles GraphQL executable documents against a schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/gqlc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		// Document failures were already reported by the command.
		if cli.GetExitCode(err) != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
