package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/pkg/version"
)

// newVersionCmd creates the "version" command.
func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the budgettree version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("budgettree %s\n", ver)
			cmd.Printf("  commit: %s\n", version.GetCommit())
			cmd.Printf("  built:  %s\n", version.GetBuildDate())
			cmd.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
