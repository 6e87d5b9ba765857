package main

import (
	"errors"
	"os"

	"github.com/rshade/budgettree/internal/cli"
	"github.com/rshade/budgettree/pkg/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitNotTerminal = 2
)

func main() {
	os.Exit(exitCode(run()))
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.Execute()
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrNotTerminal):
		return exitNotTerminal
	default:
		return exitError
	}
}
