package followDataService

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/metrics/metricsTypes"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listCache"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/replay"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/service/types"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/storageLocation"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedListType = errors.New("unsupported list storage location type")
	ErrListNotFound        = errors.New("list not found")
	ErrNoPrimaryList       = errors.New("no primary list set")
)

const defaultConcurrency = 8

type FollowDataService struct {
	contractCaller contractCaller.IContractCaller
	cache          *listCache.ListCache
	replayer       *replay.Replayer
	metricsSink    *metrics.MetricsSink
	logger         *zap.Logger
	globalConfig   *config.Config
}

func NewFollowDataService(
	cc contractCaller.IContractCaller,
	cache *listCache.ListCache,
	ms *metrics.MetricsSink,
	logger *zap.Logger,
	globalConfig *config.Config,
) *FollowDataService {
	return &FollowDataService{
		contractCaller: cc,
		cache:          cache,
		replayer:       replay.NewReplayer(logger),
		metricsSink:    ms,
		logger:         logger,
		globalConfig:   globalConfig,
	}
}

func decodeLocation(listId *big.Int, raw string) (*storageLocation.StorageLocation, error) {
	if raw == "" || raw == "0x" {
		return nil, errors.Wrapf(ErrListNotFound, "list %s", listId)
	}
	loc, err := storageLocation.DecodeStorageLocation(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", listId)
	}
	return loc, nil
}

// GetStorageLocation resolves where a list's records live.
func (fds *FollowDataService) GetStorageLocation(ctx context.Context, listId *big.Int) (*storageLocation.StorageLocation, error) {
	if loc, ok := fds.cache.GetLocation(listId); ok {
		return loc, nil
	}
	raw, err := fds.contractCaller.GetListStorageLocation(ctx, listId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch storage location for list %s", listId)
	}
	loc, err := decodeLocation(listId, raw)
	if err != nil {
		fds.logger.Sugar().Errorw("Failed to decode storage location",
			zap.String("listId", listId.String()),
			zap.String("raw", raw),
			zap.Error(err),
		)
		return nil, err
	}
	fds.cache.SetLocation(listId, loc)
	return loc, nil
}

// GetListOps returns the raw op log of a list in on-chain order.
func (fds *FollowDataService) GetListOps(ctx context.Context, listId *big.Int) ([]string, error) {
	loc, err := fds.GetStorageLocation(ctx, listId)
	if err != nil {
		return nil, err
	}
	return fds.getOpsForLocation(ctx, loc)
}

func (fds *FollowDataService) getOpsForLocation(ctx context.Context, loc *storageLocation.StorageLocation) ([]string, error) {
	if !loc.IsOnChain() {
		return nil, errors.Wrapf(ErrUnsupportedListType, "list type %s", loc.ListType)
	}
	chainId, ok := loc.ChainIdUint64()
	if !ok {
		return nil, errors.Wrapf(contractCaller.ErrNoRpcForChain, "chain id %s", loc.ChainId.Dec())
	}
	if ops, ok := fds.cache.GetOps(loc); ok {
		return ops, nil
	}

	start := time.Now()
	ops, err := fds.fetchOps(ctx, chainId, loc)
	if err != nil {
		return nil, err
	}
	_ = fds.metricsSink.Timing(metricsTypes.Metric_Timing_ListOpsFetchDuration, time.Since(start), nil)
	_ = fds.metricsSink.Incr(metricsTypes.Metric_Incr_ListOpsFetched, nil, float64(len(ops)))

	fds.cache.SetOps(loc, ops)
	return ops, nil
}

func (fds *FollowDataService) fetchOps(ctx context.Context, chainId uint64, loc *storageLocation.StorageLocation) ([]string, error) {
	slot := loc.SlotBig()
	pageSize := fds.globalConfig.ListOpsConfig.PageSize
	if pageSize <= 0 {
		ops, err := fds.contractCaller.GetAllListOps(ctx, chainId, loc.ContractAddress, slot)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch list ops for %s", loc.Key())
		}
		return ops, nil
	}

	count, err := fds.contractCaller.GetListOpCount(ctx, chainId, loc.ContractAddress, slot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch list op count for %s", loc.Key())
	}

	ops := make([]string, 0, count)
	pagination := types.NewDefaultPagination()
	pagination.Load(0, uint64(pageSize))
	for {
		startIdx, endIdx, ok := pagination.Range(count)
		if !ok {
			break
		}
		page, err := fds.contractCaller.GetListOpsInRange(ctx, chainId, loc.ContractAddress, slot, startIdx, endIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch list ops [%d, %d) for %s", startIdx, endIdx, loc.Key())
		}
		ops = append(ops, page...)
		pagination.Next()
	}
	return ops, nil
}

func (fds *FollowDataService) recordState(state replay.FollowState) {
	_ = fds.metricsSink.Incr(metricsTypes.Metric_Incr_FollowStateQuery, []metricsTypes.MetricsLabel{
		{Name: "state", Value: state.String()},
	}, 1)
}

// GetFollowState returns UNKNOWN together with the cause when the list's
// location or log cannot be loaded.
func (fds *FollowDataService) GetFollowState(ctx context.Context, listId *big.Int, target common.Address) (replay.FollowState, error) {
	ops, err := fds.GetListOps(ctx, listId)
	if err != nil {
		fds.recordState(replay.FollowState_Unknown)
		return replay.FollowState_Unknown, err
	}
	state := fds.replayer.FollowingState(ops, target)
	fds.recordState(state)
	return state, nil
}

// ReplayList loads and replays a list's whole log.
func (fds *FollowDataService) ReplayList(ctx context.Context, listId *big.Int) (*replay.ReplayResult, error) {
	ops, err := fds.GetListOps(ctx, listId)
	if err != nil {
		return nil, err
	}
	res := fds.replayer.Replay(ops)
	if res.Skipped > 0 {
		_ = fds.metricsSink.Incr(metricsTypes.Metric_Incr_ListOpsSkipped, nil, float64(res.Skipped))
	}
	return res, nil
}

// GetFollowing returns the lowercase following set in order of first mention.
func (fds *FollowDataService) GetFollowing(ctx context.Context, listId *big.Int) ([]string, error) {
	res, err := fds.ReplayList(ctx, listId)
	if err != nil {
		return nil, err
	}
	return res.Following, nil
}

func (fds *FollowDataService) concurrency() int {
	if fds.globalConfig.QueryConfig.Concurrency > 0 {
		return fds.globalConfig.QueryConfig.Concurrency
	}
	return defaultConcurrency
}

// prefetchLocations resolves the locations of every list not already cached
// in a single batched call. Failures are left for the per list path to retry.
func (fds *FollowDataService) prefetchLocations(ctx context.Context, listIds []*big.Int) map[string]*storageLocation.StorageLocation {
	locations := make(map[string]*storageLocation.StorageLocation, len(listIds))
	missing := make([]*big.Int, 0, len(listIds))
	for _, listId := range listIds {
		if loc, ok := fds.cache.GetLocation(listId); ok {
			locations[listId.String()] = loc
			continue
		}
		missing = append(missing, listId)
	}
	if len(missing) < 2 {
		return locations
	}

	results, err := fds.contractCaller.GetListStorageLocations(ctx, missing)
	if err != nil {
		fds.logger.Sugar().Warnw("Failed to batch fetch storage locations", zap.Error(err))
		return locations
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		loc, err := decodeLocation(res.ListId, res.Raw)
		if err != nil {
			continue
		}
		fds.cache.SetLocation(res.ListId, loc)
		locations[res.ListId.String()] = loc
	}
	return locations
}

// GetFollowStates answers many queries concurrently. Each list is loaded once
// and a failure only marks the queries against that list UNKNOWN.
func (fds *FollowDataService) GetFollowStates(ctx context.Context, queries []*types.FollowStateQuery) []*types.FollowStateResult {
	results := make([]*types.FollowStateResult, len(queries))
	byList := make(map[string][]int)
	listIds := make([]*big.Int, 0)
	for i, q := range queries {
		results[i] = &types.FollowStateResult{
			ListId: q.ListId,
			Target: q.Target,
			State:  replay.FollowState_Unknown,
		}
		key := q.ListId.String()
		if _, ok := byList[key]; !ok {
			listIds = append(listIds, q.ListId)
		}
		byList[key] = append(byList[key], i)
	}

	locations := fds.prefetchLocations(ctx, listIds)

	g := new(errgroup.Group)
	g.SetLimit(fds.concurrency())
	for _, listId := range listIds {
		g.Go(func() error {
			indexes := byList[listId.String()]

			var ops []string
			var err error
			if loc, ok := locations[listId.String()]; ok {
				ops, err = fds.getOpsForLocation(ctx, loc)
			} else {
				ops, err = fds.GetListOps(ctx, listId)
			}
			if err != nil {
				fds.logger.Sugar().Warnw("Failed to load list for follow state",
					zap.String("listId", listId.String()),
					zap.Error(err),
				)
				for _, i := range indexes {
					results[i].Err = err
					fds.recordState(replay.FollowState_Unknown)
				}
				return nil
			}
			for _, i := range indexes {
				results[i].State = fds.replayer.FollowingState(ops, results[i].Target)
				fds.recordState(results[i].State)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// GetPrimaryListFollowState checks target against the follower's primary list.
func (fds *FollowDataService) GetPrimaryListFollowState(ctx context.Context, follower common.Address, target common.Address) (replay.FollowState, error) {
	listId, ok, err := fds.contractCaller.GetPrimaryList(ctx, follower)
	if err != nil {
		return replay.FollowState_Unknown, errors.Wrapf(err, "failed to fetch primary list for %s", follower.Hex())
	}
	if !ok {
		return replay.FollowState_Unknown, errors.Wrapf(ErrNoPrimaryList, "%s", follower.Hex())
	}
	return fds.GetFollowState(ctx, listId, target)
}

// InvalidateList must be called after submitting ops to a list so the next
// read observes them.
func (fds *FollowDataService) InvalidateList(listId *big.Int) {
	fds.cache.InvalidateList(listId)
}
