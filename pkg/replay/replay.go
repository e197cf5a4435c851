package replay

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

type FollowState int

const (
	FollowState_Unknown FollowState = iota
	FollowState_Follows
	FollowState_DoesNotFollow
)

func (fs FollowState) String() string {
	switch fs {
	case FollowState_Follows:
		return "FOLLOWS"
	case FollowState_DoesNotFollow:
		return "DOES_NOT_FOLLOW"
	default:
		return "UNKNOWN"
	}
}

type ReplayResult struct {
	// Following holds lowercase addresses in order of first mention.
	Following []string
	Applied   int
	Ignored   int
	Skipped   int
}

// Replayer folds an op log into follow state. It holds no mutable state and is
// safe for concurrent use.
type Replayer struct {
	logger *zap.Logger
}

func NewReplayer(l *zap.Logger) *Replayer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Replayer{logger: l}
}

var defaultReplayer = NewReplayer(nil)

// fold walks rawOps in the order given and calls visit for every decoded op.
// Undecodable entries are logged and skipped.
func (r *Replayer) fold(rawOps []string, visit func(op *listOps.ListOperation)) int {
	skipped := 0
	for i, raw := range rawOps {
		op, err := listOps.DecodeListOp(raw)
		if err != nil {
			r.logger.Sugar().Debugw("Skipping undecodable list op",
				zap.Int("index", i),
				zap.String("raw", raw),
				zap.Error(err),
			)
			skipped++
			continue
		}
		visit(op)
	}
	return skipped
}

// Replay computes the current following set. A remove leaves a tombstone so
// the address is excluded without losing its position.
func (r *Replayer) Replay(rawOps []string) *ReplayResult {
	res := &ReplayResult{}
	state := orderedmap.New[common.Address, bool]()

	res.Skipped = r.fold(rawOps, func(op *listOps.ListOperation) {
		switch op.Opcode {
		case listOps.Opcode_AddRecord:
			state.Set(op.Record.Address, true)
			res.Applied++
		case listOps.Opcode_RemoveRecord:
			state.Set(op.Record.Address, false)
			res.Applied++
		default:
			// tag and untag do not change follow state
			res.Ignored++
		}
	})

	res.Following = make([]string, 0, state.Len())
	for pair := state.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value {
			res.Following = append(res.Following, hexutil.Encode(pair.Key.Bytes()))
		}
	}
	return res
}

func (r *Replayer) FollowingSet(rawOps []string) []string {
	return r.Replay(rawOps).Following
}

// FollowingState tracks only the latest add/remove seen for target. The whole
// log is always scanned since a later op overrides an earlier one.
func (r *Replayer) FollowingState(rawOps []string, target common.Address) FollowState {
	state := FollowState_DoesNotFollow
	r.fold(rawOps, func(op *listOps.ListOperation) {
		if op.Record.Address != target {
			return
		}
		switch op.Opcode {
		case listOps.Opcode_AddRecord:
			state = FollowState_Follows
		case listOps.Opcode_RemoveRecord:
			state = FollowState_DoesNotFollow
		}
	})
	return state
}

func ResolveFollowingSet(rawOps []string) []string {
	return defaultReplayer.FollowingSet(rawOps)
}

func ResolveFollowingState(rawOps []string, target common.Address) FollowState {
	return defaultReplayer.FollowingState(rawOps, target)
}
