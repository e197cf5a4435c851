package listCache

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLocation(t *testing.T, slot uint64) *storageLocation.StorageLocation {
	raw := storageLocation.EncodeStorageLocation(1, storageLocation.ListType_OnChain,
		uint256.NewInt(10),
		common.HexToAddress("0x41aa48ef3c0446b46a5b1cc6337ff3d3716e2a33"),
		uint256.NewInt(slot),
	)
	loc, err := storageLocation.DecodeStorageLocation(raw)
	require.Nil(t, err)
	return loc
}

func Test_ListCache(t *testing.T) {
	l := zap.NewNop()
	sink := metrics.NewNoopMetricsSink()

	t.Run("Should store and return locations and ops", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8, TTL: time.Minute}, sink, l)
		loc := testLocation(t, 1)

		_, ok := lc.GetLocation(big.NewInt(1))
		assert.False(t, ok)

		lc.SetLocation(big.NewInt(1), loc)
		lc.SetOps(loc, []string{"0x01", "0x02"})

		cached, ok := lc.GetLocation(big.NewInt(1))
		assert.True(t, ok)
		assert.Equal(t, loc.Key(), cached.Key())

		ops, ok := lc.GetOps(loc)
		assert.True(t, ok)
		assert.Equal(t, []string{"0x01", "0x02"}, ops)
	})
	t.Run("Should return copies of cached ops", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8, TTL: time.Minute}, sink, l)
		loc := testLocation(t, 2)
		lc.SetOps(loc, []string{"0x01"})

		ops, _ := lc.GetOps(loc)
		ops[0] = "0xff"

		again, _ := lc.GetOps(loc)
		assert.Equal(t, []string{"0x01"}, again)
	})
	t.Run("Should drop location and log on InvalidateList", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8, TTL: time.Minute}, sink, l)
		loc := testLocation(t, 3)
		lc.SetLocation(big.NewInt(3), loc)
		lc.SetOps(loc, []string{"0x01"})

		lc.InvalidateList(big.NewInt(3))

		_, ok := lc.GetLocation(big.NewInt(3))
		assert.False(t, ok)
		_, ok = lc.GetOps(loc)
		assert.False(t, ok)
	})
	t.Run("Should drop only the log on InvalidateLocation", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8, TTL: time.Minute}, sink, l)
		loc := testLocation(t, 4)
		lc.SetLocation(big.NewInt(4), loc)
		lc.SetOps(loc, []string{"0x01"})

		lc.InvalidateLocation(loc)

		_, ok := lc.GetLocation(big.NewInt(4))
		assert.True(t, ok)
		_, ok = lc.GetOps(loc)
		assert.False(t, ok)
	})
	t.Run("Should expire entries after the TTL", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8, TTL: 20 * time.Millisecond}, sink, l)
		loc := testLocation(t, 5)
		lc.SetOps(loc, []string{"0x01"})

		assert.Eventually(t, func() bool {
			_, ok := lc.GetOps(loc)
			return !ok
		}, time.Second, 10*time.Millisecond)
	})
	t.Run("Should evict beyond the size bound", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 1, TTL: time.Minute}, sink, l)
		first, second := testLocation(t, 6), testLocation(t, 7)
		lc.SetOps(first, []string{"0x01"})
		lc.SetOps(second, []string{"0x02"})

		_, ok := lc.GetOps(first)
		assert.False(t, ok)
		_, ok = lc.GetOps(second)
		assert.True(t, ok)
	})
	t.Run("Should never cache when the TTL is 0", func(t *testing.T) {
		lc := NewListCache(&ListCacheConfig{Size: 8}, sink, l)
		loc := testLocation(t, 8)
		lc.SetLocation(big.NewInt(8), loc)
		lc.SetOps(loc, []string{"0x01"})

		assert.False(t, lc.Enabled())
		_, ok := lc.GetLocation(big.NewInt(8))
		assert.False(t, ok)
		_, ok = lc.GetOps(loc)
		assert.False(t, ok)
		lc.InvalidateList(big.NewInt(8))
		lc.Purge()
	})
}
