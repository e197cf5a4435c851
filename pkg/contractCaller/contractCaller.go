package contractCaller

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const PrimaryListKey = "primary-list"

var ErrNoRpcForChain = errors.New("no rpc client configured for chain")

type StorageLocationResult struct {
	ListId *big.Int
	// Raw is the hex encoded descriptor, "0x" when the list does not exist.
	Raw string
	Err error
}

// IContractCaller reads EFP contract state. All returned byte strings are
// lowercase 0x-prefixed hex and list ops keep their on-chain order.
type IContractCaller interface {
	GetListStorageLocation(ctx context.Context, listId *big.Int) (string, error)
	GetListStorageLocations(ctx context.Context, listIds []*big.Int) ([]*StorageLocationResult, error)
	GetAllListOps(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int) ([]string, error)
	GetListOpCount(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int) (uint64, error)
	GetListOpsInRange(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int, start uint64, end uint64) ([]string, error)
	GetPrimaryList(ctx context.Context, user common.Address) (*big.Int, bool, error)
}

// BuildApplyListOpsCalldata encodes an applyListOps call for the list records
// contract. Signing and submission are left to the caller.
func BuildApplyListOpsCalldata(slot *big.Int, ops [][]byte) ([]byte, error) {
	data, err := ListRecords.Pack("applyListOps", slot, ops)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack applyListOps")
	}
	return data, nil
}
