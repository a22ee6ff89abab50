package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/vercel/turbopack/cli/internal/cmdutil"
	"github.com/vercel/turbopack/cli/internal/scm"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

type hashFilesOpts struct {
	root         string
	packagePath  string
	inputs       []string
	allowMissing bool
}

func getHashFilesCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &hashFilesOpts{}
	cmd := &cobra.Command{
		Use:   "hash-files [files...]",
		Short: "Print git-compatible content hashes",
		Long: "Print git-compatible content hashes for the given files, or, with --package, " +
			"for every file of a package that survives gitignore processing and the input patterns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootPath(helper, opts.root)
			if err != nil {
				return err
			}

			var hashes scm.GitHashes
			if opts.packagePath != "" {
				hashes, err = scm.GetPackageFileHashes(root, turbopath.AnchoredSystemPathFromUpstream(opts.packagePath), opts.inputs)
			} else {
				files := make([]turbopath.AnchoredSystemPath, len(args))
				for index, arg := range args {
					files[index] = turbopath.AnchoredSystemPathFromUpstream(arg)
				}
				hashes, err = scm.HashFiles(root, files, opts.allowMissing)
			}
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(hashes))
			for path := range hashes {
				paths = append(paths, path.ToString())
			}
			sort.Strings(paths)
			for _, path := range paths {
				fmt.Fprintf(os.Stdout, "%s=%s\n", path, hashes[turbopath.AnchoredUnixPathFromUpstream(path)])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", "", "repository root (defaults to the working directory)")
	cmd.Flags().StringVar(&opts.packagePath, "package", "", "hash a package directory instead of listed files")
	cmd.Flags().StringSliceVar(&opts.inputs, "inputs", nil, "include/exclude patterns for --package (prefix with ! to exclude)")
	cmd.Flags().BoolVar(&opts.allowMissing, "allow-missing", false, "skip files that do not exist")
	return cmd
}

func rootPath(helper *cmdutil.Helper, root string) (turbopath.AbsoluteSystemPath, error) {
	if root != "" {
		return turbopath.AbsoluteSystemPathFromUpstream(root), nil
	}
	return helper.Cwd()
}
