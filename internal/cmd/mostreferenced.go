package cmd

import (
	gocontext "context"
	"os"

	"github.com/spf13/cobra"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/cmdutil"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/issue"
	"github.com/vercel/turbopack/cli/internal/pack"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/turbopath"
	"github.com/vercel/turbopack/cli/internal/ui"
)

func getMostReferencedCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &buildOpts{}
	cmd := &cobra.Command{
		Use:   "most-referenced <entry>",
		Short: "Print the most referenced modules of the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.rootPath(helper)
			if err != nil {
				return err
			}
			filesystem := fs.NewOsFileSystem("project", root)
			entry := fs.NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream(args[0]))

			run := tasks.NewRun(gocontext.Background())
			ctx := run.Context()
			context := defaultContext(entry, env.Target(opts.target), opts.production)

			value := ctx.Spawn("cli.mostReferenced", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
				module, err := context.Process(ctx, asset.NewSource(entry))
				if err != nil {
					return nil, err
				}
				return nil, pack.PrintMostReferenced(ctx, module, os.Stdout)
			})
			_, runErr := value.Get(ctx)

			captured := issue.TakeIssuesWithPath(ctx, value)
			if err := ui.RenderCapturedIssues(os.Stderr, captured); err != nil {
				return err
			}
			return runErr
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}
