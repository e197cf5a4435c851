package contractCaller

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildApplyListOpsCalldata(t *testing.T) {
	alice := common.HexToAddress("0x983110309620d911731ac0932219af06091b6744")
	op, err := hexutil.Decode(listOps.EncodeFollowOperation(alice))
	require.Nil(t, err)

	data, err := BuildApplyListOpsCalldata(big.NewInt(7), [][]byte{op})
	require.Nil(t, err)

	method := ListRecords.Methods["applyListOps"]
	assert.Equal(t, method.ID, data[:4])

	args, err := method.Inputs.Unpack(data[4:])
	require.Nil(t, err)
	assert.Equal(t, int64(7), args[0].(*big.Int).Int64())
	assert.Equal(t, [][]byte{op}, args[1].([][]byte))
}
