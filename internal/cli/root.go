package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
)

// Execute runs the kintree CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function builds a CLI with an info-level stderr logger and executes
// the root command tree under ctx, so cancelling ctx stops long-running
// commands like serve. Version information comes from pkg/buildinfo,
// injected via ldflags at build time.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	c := New(os.Stderr, log.InfoLevel)
	return c.RootCommand().ExecuteContext(ctx)
}
