package efpContractCaller

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/tests"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/clients/ethereum"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	registry = common.HexToAddress(tests.TestListRegistryAddress)
	metadata = common.HexToAddress(tests.TestAccountMetadataAddress)
	records  = common.HexToAddress(tests.TestListRecordsAddress)
)

func setup() (*EfpContractCaller, *tests.FakeEfp) {
	l := tests.GetLogger()
	mock := tests.NewRpcMock(tests.TestRegistryRpcUrl, tests.TestRecordsRpcUrl)

	fake := tests.NewFakeEfp()
	fake.RegisterRegistry(mock, registry, metadata)
	fake.RegisterRecords(mock, records)

	clients := map[uint64]*ethereum.Client{}
	for chainId, url := range map[uint64]string{8453: tests.TestRegistryRpcUrl, tests.TestRecordsChainId: tests.TestRecordsRpcUrl} {
		cfg := ethereum.DefaultEthereumClientConfig(url)
		cfg.NativeBatchCallSize = 2
		cfg.Backoffs = nil
		c := ethereum.NewClient(cfg, l)
		c.SetHttpClient(mock.HttpClient())
		clients[chainId] = c
	}

	cc := NewEfpContractCaller(&EfpContractCallerConfig{
		RegistryChainId:        8453,
		ListRegistryAddress:    registry,
		AccountMetadataAddress: metadata,
	}, clients, l)
	return cc, fake
}

func rawOp(t *testing.T, op string) []byte {
	b, err := hexutil.Decode(op)
	require.Nil(t, err)
	return b
}

func Test_EfpContractCaller(t *testing.T) {
	ctx := context.Background()
	alice := common.HexToAddress("0x983110309620d911731ac0932219af06091b6744")
	bob := common.HexToAddress("0x0000000000000000000000000000000000000001")
	location := storageLocation.EncodeStorageLocation(1, storageLocation.ListType_OnChain, uint256.NewInt(tests.TestRecordsChainId), records, uint256.NewInt(7))

	t.Run("Should fetch a storage location", func(t *testing.T) {
		cc, fake := setup()
		fake.SetLocation(43802, rawOp(t, location))

		raw, err := cc.GetListStorageLocation(ctx, big.NewInt(43802))
		require.Nil(t, err)
		assert.Equal(t, location, raw)
	})
	t.Run("Should return empty bytes for an unminted list", func(t *testing.T) {
		cc, _ := setup()
		raw, err := cc.GetListStorageLocation(ctx, big.NewInt(1))
		require.Nil(t, err)
		assert.Equal(t, "0x", raw)
	})
	t.Run("Should batch fetch storage locations in order", func(t *testing.T) {
		cc, fake := setup()
		fake.SetLocation(1, rawOp(t, location))
		fake.SetLocation(3, rawOp(t, location))

		results, err := cc.GetListStorageLocations(ctx, []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
		require.Nil(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, int64(1), results[0].ListId.Int64())
		assert.Equal(t, location, results[0].Raw)
		assert.Equal(t, "0x", results[1].Raw)
		assert.Nil(t, results[1].Err)
		assert.Equal(t, location, results[2].Raw)
	})
	t.Run("Should fetch all list ops in log order", func(t *testing.T) {
		cc, fake := setup()
		ops := [][]byte{
			rawOp(t, listOps.EncodeFollowOperation(alice)),
			rawOp(t, listOps.EncodeFollowOperation(bob)),
			rawOp(t, listOps.EncodeUnfollowOperation(alice)),
		}
		fake.SetLog(big.NewInt(7), ops)

		got, err := cc.GetAllListOps(ctx, tests.TestRecordsChainId, records, big.NewInt(7))
		require.Nil(t, err)
		assert.Equal(t, []string{
			listOps.EncodeFollowOperation(alice),
			listOps.EncodeFollowOperation(bob),
			listOps.EncodeUnfollowOperation(alice),
		}, got)
	})
	t.Run("Should fetch list op count and ranges", func(t *testing.T) {
		cc, fake := setup()
		fake.SetLog(big.NewInt(7), [][]byte{
			rawOp(t, listOps.EncodeFollowOperation(alice)),
			rawOp(t, listOps.EncodeFollowOperation(bob)),
			{0x01},
		})

		count, err := cc.GetListOpCount(ctx, tests.TestRecordsChainId, records, big.NewInt(7))
		require.Nil(t, err)
		assert.Equal(t, uint64(3), count)

		got, err := cc.GetListOpsInRange(ctx, tests.TestRecordsChainId, records, big.NewInt(7), 1, 3)
		require.Nil(t, err)
		assert.Equal(t, []string{listOps.EncodeFollowOperation(bob), "0x01"}, got)
	})
	t.Run("Should fail for a chain without an rpc client", func(t *testing.T) {
		cc, _ := setup()
		_, err := cc.GetAllListOps(ctx, 1, records, big.NewInt(7))
		assert.True(t, errors.Is(err, contractCaller.ErrNoRpcForChain))
	})
	t.Run("Should surface a revert", func(t *testing.T) {
		cc, _ := setup()
		_, err := cc.GetListOpsInRange(ctx, tests.TestRecordsChainId, records, big.NewInt(7), 0, 5)
		assert.NotNil(t, err)
	})
	t.Run("Should resolve a primary list", func(t *testing.T) {
		cc, fake := setup()
		fake.SetPrimaryList(alice, 43802)

		listId, found, err := cc.GetPrimaryList(ctx, alice)
		require.Nil(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(43802), listId.Int64())

		_, found, err = cc.GetPrimaryList(ctx, bob)
		require.Nil(t, err)
		assert.False(t, found)
	})
}
