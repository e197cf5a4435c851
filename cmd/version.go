package cmd

import (
	"fmt"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/version"
	"github.com/spf13/cobra"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of efp-sidecar",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nCommit: %s\n", version.GetVersion(), version.GetCommit())
	},
}
