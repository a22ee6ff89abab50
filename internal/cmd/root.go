// Package cmd holds the root cobra command for turbopack.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vercel/turbopack/cli/internal/cmdutil"
)

// RunWithArgs runs turbopack with the specified arguments. The
// arguments should not include the binary being invoked.
func RunWithArgs(args []string, version string) int {
	helper := cmdutil.NewHelper(version)
	root := getCmd(helper)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func getCmd(helper *cmdutil.Helper) *cobra.Command {
	var verbosity int
	cmd := &cobra.Command{
		Use:           "turbopack",
		Short:         "The incremental bundler",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       helper.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			helper.SetVerbosity(verbosity)
		},
	}
	cmd.PersistentFlags().CountVarP(&verbosity, "verbosity", "v", "verbosity")
	cmd.AddCommand(getBuildCmd(helper))
	cmd.AddCommand(getMostReferencedCmd(helper))
	cmd.AddCommand(getHashFilesCmd(helper))
	return cmd
}
