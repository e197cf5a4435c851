package cmd

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/tests"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller/efpContractCaller"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/eventBus"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listCache"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/service/followDataService"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0x983110309620d911731ac0932219af06091b6744"
	addrB = "0x0000000000000000000000000000000000000001"
)

func Test_Encode(t *testing.T) {
	t.Run("Should keep interleaved flag order", func(t *testing.T) {
		entries := []*listOps.BatchEntry{}
		follow := &batchFlag{action: listOps.Action_Follow, entries: &entries}
		unfollow := &batchFlag{action: listOps.Action_Unfollow, entries: &entries}
		require.Nil(t, unfollow.Set(addrB))
		require.Nil(t, follow.Set(addrA))

		out := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(out)
		require.Nil(t, runEncode(cmd, entries, ""))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Equal(t, []string{
			"0x01020101" + addrB[2:],
			"0x01010101" + addrA[2:],
		}, lines)
	})
	t.Run("Should print calldata when a slot is given", func(t *testing.T) {
		entries := []*listOps.BatchEntry{{Action: listOps.Action_Follow, Address: common.HexToAddress(addrA)}}
		out := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(out)
		require.Nil(t, runEncode(cmd, entries, "42"))
		assert.Contains(t, out.String(), "applyListOps calldata: 0x")
	})
	t.Run("Should reject an invalid address", func(t *testing.T) {
		entries := []*listOps.BatchEntry{}
		assert.NotNil(t, (&batchFlag{action: listOps.Action_Follow, entries: &entries}).Set("0x1234"))
		assert.Empty(t, entries)
	})
	t.Run("Should require at least one entry", func(t *testing.T) {
		assert.NotNil(t, runEncode(&cobra.Command{}, nil, ""))
	})
}

func Test_Decode(t *testing.T) {
	out := &bytes.Buffer{}
	decodeCmd.SetOut(out)
	decodeCmd.Run(decodeCmd, []string{listOps.EncodeFollowOperation(common.HexToAddress(addrA)), "0x0101"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], addrA)
	assert.Contains(t, lines[1], "undecodable")
}

func Test_WriteFollowing(t *testing.T) {
	t.Run("Should write csv with a header", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.Nil(t, writeFollowing(out, Output_Csv, []string{addrA, addrB}))
		assert.Equal(t, "index,address\n0,"+addrA+"\n1,"+addrB+"\n", out.String())
	})
	t.Run("Should write one address per line", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.Nil(t, writeFollowing(out, Output_Text, []string{addrA, addrB}))
		assert.Equal(t, addrA+"\n"+addrB+"\n", out.String())
	})
}

func Test_ParseListId(t *testing.T) {
	id, err := parseListId("43802")
	require.Nil(t, err)
	assert.Equal(t, int64(43802), id.Int64())

	id, err = parseListId("0x10")
	require.Nil(t, err)
	assert.Equal(t, int64(16), id.Int64())

	_, err = parseListId("-1")
	assert.NotNil(t, err)
	_, err = parseListId("abc")
	assert.NotNil(t, err)
}

func Test_ListWatcher(t *testing.T) {
	cfg := tests.GetConfig()
	l := tests.GetLogger()

	mock := tests.NewRpcMock(tests.TestRegistryRpcUrl, tests.TestRecordsRpcUrl)
	fake := tests.NewFakeEfp()
	fake.RegisterRegistry(mock, common.HexToAddress(tests.TestListRegistryAddress), common.HexToAddress(tests.TestAccountMetadataAddress))
	fake.RegisterRecords(mock, common.HexToAddress(tests.TestListRecordsAddress))

	clients := efpContractCaller.NewEthereumClients(cfg, l)
	for _, c := range clients {
		c.SetHttpClient(mock.HttpClient())
	}
	sink := metrics.NewNoopMetricsSink()
	service := followDataService.NewFollowDataService(
		efpContractCaller.NewEfpContractCallerFromConfig(cfg, clients, l),
		listCache.NewListCache(&listCache.ListCacheConfig{Size: 8}, sink, l),
		sink, l, cfg,
	)

	loc := storageLocation.EncodeStorageLocation(1, storageLocation.ListType_OnChain,
		uint256.NewInt(tests.TestRecordsChainId),
		common.HexToAddress(tests.TestListRecordsAddress),
		uint256.NewInt(1),
	)
	fake.SetLocation(1, hexutil.MustDecode(loc))
	fake.SetLog(big.NewInt(1), [][]byte{hexutil.MustDecode(listOps.EncodeFollowOperation(common.HexToAddress(addrA)))})

	eb := eventBus.NewEventBus(l)
	consumer := &eventBusTypes.Consumer{Id: "test", Channel: make(chan *eventBusTypes.Event, 10)}
	eb.Subscribe(consumer)

	w := newListWatcher(service, sink, eb, big.NewInt(1), l)
	ctx := context.Background()

	t.Run("Should not report a change on the first load", func(t *testing.T) {
		assert.False(t, w.poll(ctx))
		assert.Equal(t, []string{addrA}, w.following)

		event := <-consumer.Channel
		assert.Equal(t, eventBusTypes.Event_FollowingLoaded, event.Name)
		assert.Equal(t, []string{addrA}, event.Data.(*eventBusTypes.FollowingChangedData).Added)
	})
	t.Run("Should not report a change when nothing moved", func(t *testing.T) {
		assert.False(t, w.poll(ctx))
	})
	t.Run("Should report appended ops", func(t *testing.T) {
		fake.AppendOps(big.NewInt(1), hexutil.MustDecode(listOps.EncodeFollowOperation(common.HexToAddress(addrB))))
		assert.True(t, w.poll(ctx))
		assert.Equal(t, []string{addrA, addrB}, w.following)

		event := <-consumer.Channel
		assert.Equal(t, eventBusTypes.Event_FollowingChanged, event.Name)
		data := event.Data.(*eventBusTypes.FollowingChangedData)
		assert.Equal(t, []string{addrB}, data.Added)
		assert.Empty(t, data.Removed)
		assert.Equal(t, 2, data.Count)
	})
}

func Test_PrintFollowingEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := &eventBusTypes.Consumer{Id: "stdout", Context: ctx, Channel: make(chan *eventBusTypes.Event, 1)}
	consumer.Channel <- &eventBusTypes.Event{
		Name: eventBusTypes.Event_FollowingChanged,
		Data: &eventBusTypes.FollowingChangedData{
			ListId:  big.NewInt(7),
			Added:   []string{addrB},
			Removed: []string{addrA},
			Count:   1,
			Root:    "0xroot",
		},
	}

	out := &bytes.Buffer{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		printFollowingEvents(out, consumer)
	}()
	assert.Eventually(t, func() bool { return len(consumer.Channel) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "+"+addrB+"\n-"+addrA+"\n# list 7 count 1 root 0xroot\n", out.String())
}
