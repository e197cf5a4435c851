package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/replay"
)

type FollowStateQuery struct {
	ListId *big.Int
	Target common.Address
}

type FollowStateResult struct {
	ListId *big.Int
	Target common.Address
	State  replay.FollowState
	// Err is set when State is UNKNOWN because a prerequisite could not be loaded.
	Err error
}
