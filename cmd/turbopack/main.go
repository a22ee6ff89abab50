package main

import (
	"os"

	"github.com/vercel/turbopack/cli/internal/cmd"
)

var version = "0.1.0-dev"

func main() {
	os.Exit(cmd.RunWithArgs(os.Args[1:], version))
}
