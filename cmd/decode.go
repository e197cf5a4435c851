package cmd

import (
	"fmt"

	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Decode list operations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, raw := range args {
			op, err := listOps.DecodeListOp(raw)
			if err != nil {
				fmt.Fprintf(out, "%s\tundecodable: %v\n", raw, err)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", raw, op)
		}
	},
}
