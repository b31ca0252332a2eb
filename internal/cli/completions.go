package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	// sslModes contains the SSL modes understood by both server dialects.
	sslModes    = []string{"disable", "prefer", "require", "verify-ca", "verify-full"}
	dialects    = []string{"mysql", "postgres", "sqlite"}
	authMethods = []string{"standard", "aws", "azure", "google"}
)

func completeFrom(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var matches []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				matches = append(matches, v)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(sslModes)(cmd, args, toComplete)
}

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Let the shell handle directory completion
	return nil, cobra.ShellCompDirectiveFilterDirs
}

func registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("dialect", completeFrom(dialects))
	_ = cmd.RegisterFlagCompletionFunc("auth-method", completeFrom(authMethods))
	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
	_ = cmd.RegisterFlagCompletionFunc("data-dir", completeDirectories)
}
