// Command velo is the terminal client of the storefront: it browses the
// catalog, searches the site, keeps a local cart and seeds PostgreSQL.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
)

// reportedError wraps a failure that was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reportError prints err unless a command has already reported it.
func reportError(w io.Writer, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
