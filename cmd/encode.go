package cmd

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// batchFlag appends to a shared entry list so --follow and --unfollow keep the
// order they were given in on the command line.
type batchFlag struct {
	action  listOps.Action
	entries *[]*listOps.BatchEntry
}

func (f *batchFlag) String() string {
	return ""
}

func (f *batchFlag) Set(value string) error {
	addr, err := listOps.ParseAddress(value)
	if err != nil {
		return err
	}
	*f.entries = append(*f.entries, &listOps.BatchEntry{Action: f.action, Address: addr})
	return nil
}

func (f *batchFlag) Type() string {
	return "address"
}

var (
	encodeEntries []*listOps.BatchEntry
	encodeSlot    string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode follow and unfollow list operations",
	Example: `  efp-sidecar encode --follow 0x983110309620d911731ac0932219af06091b6744 --unfollow 0x0000000000000000000000000000000000000001
  efp-sidecar encode --follow 0x983110309620d911731ac0932219af06091b6744 --slot 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { encodeEntries = nil }()
		return runEncode(cmd, encodeEntries, encodeSlot)
	},
}

func init() {
	encodeCmd.Flags().Var(&batchFlag{action: listOps.Action_Follow, entries: &encodeEntries}, "follow", "Address to follow (repeatable)")
	encodeCmd.Flags().Var(&batchFlag{action: listOps.Action_Unfollow, entries: &encodeEntries}, "unfollow", "Address to unfollow (repeatable)")
	encodeCmd.Flags().StringVar(&encodeSlot, "slot", "", "List storage slot; when set the applyListOps calldata is printed too")
}

func runEncode(cmd *cobra.Command, entries []*listOps.BatchEntry, slot string) error {
	if len(entries) == 0 {
		return errors.New("at least one --follow or --unfollow is required")
	}
	ops, err := listOps.EncodeBatchOperations(entries)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, op := range ops {
		fmt.Fprintln(out, op)
	}
	if slot == "" {
		return nil
	}

	slotInt, ok := new(big.Int).SetString(slot, 0)
	if !ok || slotInt.Sign() < 0 {
		return errors.Errorf("invalid slot %q", slot)
	}
	raw := make([][]byte, 0, len(ops))
	for _, op := range ops {
		raw = append(raw, hexutil.MustDecode(op))
	}
	calldata, err := contractCaller.BuildApplyListOpsCalldata(slotInt, raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "applyListOps calldata: %s\n", hexutil.Encode(calldata))
	return nil
}
