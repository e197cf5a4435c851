package replay

import (
	"encoding/binary"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"
)

var MerkleLeafPrefix_FollowingSet = []byte("efp:following")

// FollowingRoot returns a keccak256 merkle root over the sorted following set.
// The first leaf carries the set size so an empty set still has a root.
func FollowingRoot(following []string) (common.Hash, error) {
	addrs := make([]common.Address, 0, len(following))
	for _, f := range following {
		if !common.IsHexAddress(f) {
			return common.Hash{}, errors.Errorf("invalid address in following set: %s", f)
		}
		addrs = append(addrs, common.HexToAddress(f))
	}
	slices.SortFunc(addrs, func(a, b common.Address) int {
		return a.Cmp(b)
	})

	leaves := [][]byte{
		append(slices.Clone(MerkleLeafPrefix_FollowingSet), binary.BigEndian.AppendUint64([]byte{}, uint64(len(addrs)))...),
	}
	for _, a := range addrs {
		leaves = append(leaves, a.Bytes())
	}

	tree, err := merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(keccak256.New()),
	)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to build following set tree")
	}
	return common.BytesToHash(tree.Root()), nil
}

func FollowingRootHex(following []string) (string, error) {
	root, err := FollowingRoot(following)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(root.Bytes()), nil
}
