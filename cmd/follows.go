package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/service/types"
	"github.com/spf13/cobra"
)

var followsPrimary bool

var followsCmd = &cobra.Command{
	Use:   "follows <listId|follower> <address>...",
	Short: "Show whether a list follows each address",
	Long: `Show whether a list follows each address.

With --primary the first argument is a follower address and their primary list is used.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := make([]common.Address, 0, len(args)-1)
		for _, a := range args[1:] {
			addr, err := listOps.ParseAddress(a)
			if err != nil {
				return err
			}
			targets = append(targets, addr)
		}

		deps, err := newSidecarDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		ctx := context.Background()

		if followsPrimary {
			follower, err := listOps.ParseAddress(args[0])
			if err != nil {
				return err
			}
			for _, target := range targets {
				state, err := deps.service.GetPrimaryListFollowState(ctx, follower, target)
				printFollowState(cmd, target, state.String(), err)
			}
			return nil
		}

		listId, err := parseListId(args[0])
		if err != nil {
			return err
		}
		queries := make([]*types.FollowStateQuery, 0, len(targets))
		for _, target := range targets {
			queries = append(queries, &types.FollowStateQuery{ListId: listId, Target: target})
		}
		for _, res := range deps.service.GetFollowStates(ctx, queries) {
			printFollowState(cmd, res.Target, res.State.String(), res.Err)
		}
		return nil
	},
}

func init() {
	followsCmd.Flags().BoolVar(&followsPrimary, "primary", false, "Treat the first argument as a follower address and use their primary list")
}

func printFollowState(cmd *cobra.Command, target common.Address, state string, err error) {
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\n", hexutil.Encode(target.Bytes()), state, err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", hexutil.Encode(target.Bytes()), state)
}
