package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitAborted  = 1
	ExitConfig   = 2
	ExitDegraded = 3
)

// exitError attaches an exit code to a run outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// usageError marks flag and argument mistakes.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func init() {
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// usageArgs wraps a positional argument validator so failures exit as
// usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func exitCode(err error) int {
	var ee *exitError
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.As(err, &ue), errors.Is(err, domain.ErrConfig):
		return ExitConfig
	default:
		return ExitAborted
	}
}
