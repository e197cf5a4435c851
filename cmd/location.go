package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var locationRaw string

var locationCmd = &cobra.Command{
	Use:   "location [listId]",
	Short: "Show where a list's operations are stored",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if locationRaw != "" {
			loc, err := storageLocation.DecodeStorageLocation(locationRaw)
			if err != nil {
				return err
			}
			printLocation(cmd.OutOrStdout(), loc)
			return nil
		}
		if len(args) != 1 {
			return errors.New("a list id or --raw is required")
		}
		listId, err := parseListId(args[0])
		if err != nil {
			return err
		}

		deps, err := newSidecarDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		loc, err := deps.service.GetStorageLocation(context.Background(), listId)
		if err != nil {
			return err
		}
		printLocation(cmd.OutOrStdout(), loc)
		return nil
	},
}

func init() {
	locationCmd.Flags().StringVar(&locationRaw, "raw", "", "Decode a hex encoded storage location instead of fetching one")
}

func printLocation(out io.Writer, loc *storageLocation.StorageLocation) {
	fmt.Fprintf(out, "version:  %d\n", loc.Version)
	fmt.Fprintf(out, "type:     %s\n", loc.ListType)
	fmt.Fprintf(out, "chainId:  %s\n", loc.ChainId.Dec())
	fmt.Fprintf(out, "contract: %s\n", loc.ContractHex())
	fmt.Fprintf(out, "slot:     %s\n", loc.Slot.Hex())
}
