// Package cmdutil holds the state shared by the CLI subcommands.
package cmdutil

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

// Helper is constructed once per invocation and threaded to the
// subcommands.
type Helper struct {
	// Logger is the process logger; library packages stay silent and
	// report through issues instead.
	Logger hclog.Logger

	Version string

	verbosity int
}

// NewHelper builds a Helper with a logger at the default level.
func NewHelper(version string) *Helper {
	return &Helper{
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:  "turbopack",
			Level: hclog.Warn,
		}),
		Version: version,
	}
}

// SetVerbosity raises the log level: once for info, twice for debug.
func (h *Helper) SetVerbosity(verbosity int) {
	h.verbosity = verbosity
	switch {
	case verbosity >= 2:
		h.Logger.SetLevel(hclog.Debug)
	case verbosity == 1:
		h.Logger.SetLevel(hclog.Info)
	}
}

// Cwd returns the working directory as an absolute system path.
func (h *Helper) Cwd() (turbopath.AbsoluteSystemPath, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "determining working directory")
	}
	return turbopath.AbsoluteSystemPathFromUpstream(cwd), nil
}
