package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/shopload/pkg/shopload"
)

// RequireNoArgs rejects positional arguments with a hint pointing at the
// flag that most likely was meant.
func RequireNoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf(`%w: unexpected argument %q

Usage: %s

Example:
  %s --data-dir %s`, shopload.ErrUsage, args[0], cmd.UseLine(), cmd.CommandPath(), args[0])
}

// flagError marks flag parsing failures as usage errors.
func flagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %w", shopload.ErrUsage, err)
}
