package cmd

import (
	gocontext "context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/cmdutil"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/issue"
	"github.com/vercel/turbopack/cli/internal/moduleoptions"
	"github.com/vercel/turbopack/cli/internal/pack"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/transition"
	"github.com/vercel/turbopack/cli/internal/turbopath"
	"github.com/vercel/turbopack/cli/internal/ui"
)

type buildOpts struct {
	root       string
	output     string
	target     string
	production bool
}

func (opts *buildOpts) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&opts.root, "root", "", "project root (defaults to the working directory)")
	flags.StringVar(&opts.target, "target", string(env.TargetNode), "target environment (node or browser)")
	flags.BoolVar(&opts.production, "production", false, "build for production")
}

func (opts *buildOpts) rootPath(helper *cmdutil.Helper) (turbopath.AbsoluteSystemPath, error) {
	return rootPath(helper, opts.root)
}

// defaultContext builds the AssetContext a plain build runs under:
// no transitions, TypeScript enabled, anchored at the entry's
// directory.
func defaultContext(entry fs.Path, target env.Target, production bool) *pack.ModuleAssetContext {
	environment := env.NewEnvironment(target)
	environment.Production = production
	return pack.NewModuleAssetContext(
		map[string]transition.Transition{},
		entry.Parent(),
		environment,
		&moduleoptions.OptionsContext{EnableTypescript: true},
		&asset.ResolveOptionsContext{EnableTypescript: true},
	)
}

func getBuildCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &buildOpts{}
	cmd := &cobra.Command{
		Use:   "build <entry>",
		Short: "Bundle an entry into the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.rootPath(helper)
			if err != nil {
				return err
			}
			filesystem := fs.NewOsFileSystem("project", root)
			entry := fs.NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream(args[0]))
			outputDir := fs.NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream(opts.output))
			helper.Logger.Debug("building", "entry", entry.ToString(), "output", outputDir.ToString())

			run := tasks.NewRun(gocontext.Background())
			ctx := run.Context()
			context := defaultContext(entry, env.Target(opts.target), opts.production)

			value := ctx.Spawn("cli.build", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
				module, err := context.Process(ctx, asset.NewSource(entry))
				if err != nil {
					return nil, err
				}
				return nil, pack.EmitWithCompletion(ctx, module, outputDir)
			})
			_, buildErr := value.Get(ctx)

			captured := issue.TakeIssuesWithPath(ctx, value)
			if err := ui.RenderCapturedIssues(os.Stderr, captured); err != nil {
				return err
			}
			if buildErr != nil {
				return buildErr
			}
			if hasBreakingIssue(captured) {
				return errors.New("build completed with errors")
			}
			return nil
		},
	}
	opts.addFlags(cmd.Flags())
	cmd.Flags().StringVar(&opts.output, "output", "dist", "output directory, relative to the project root")
	return cmd
}

func hasBreakingIssue(captured *issue.CapturedIssues) bool {
	for _, i := range captured.Issues() {
		if i.Severity() <= issue.Error {
			return true
		}
	}
	return false
}
