package tests

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller"
)

// FakeEfp serves the EFP contract reads on top of RpcMock handlers.
type FakeEfp struct {
	mu        sync.Mutex
	locations map[string][]byte
	logs      map[string][][]byte
	primary   map[common.Address][]byte
	calls     map[string]int
}

func NewFakeEfp() *FakeEfp {
	return &FakeEfp{
		locations: make(map[string][]byte),
		logs:      make(map[string][][]byte),
		primary:   make(map[common.Address][]byte),
		calls:     make(map[string]int),
	}
}

func (f *FakeEfp) SetLocation(listId int64, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations[big.NewInt(listId).String()] = raw
}

func (f *FakeEfp) SetLog(slot *big.Int, ops [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[slot.String()] = ops
}

func (f *FakeEfp) AppendOps(slot *big.Int, ops ...[]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[slot.String()] = append(f.logs[slot.String()], ops...)
}

func (f *FakeEfp) SetPrimaryList(user common.Address, listId int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.primary[user] = common.LeftPadBytes(big.NewInt(listId).Bytes(), 32)
}

func (f *FakeEfp) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func selector(a abi.ABI, method string) []byte {
	return a.Methods[method].ID
}

func handle(f *FakeEfp, a abi.ABI, method string, fn func(args []interface{}) ([]interface{}, error)) CallHandler {
	m := a.Methods[method]
	return func(input []byte) ([]byte, error) {
		f.mu.Lock()
		f.calls[method]++
		f.mu.Unlock()

		args, err := m.Inputs.Unpack(input[4:])
		if err != nil {
			return nil, err
		}
		out, err := fn(args)
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(out...)
	}
}

// RegisterRegistry serves the list registry and account metadata contracts.
func (f *FakeEfp) RegisterRegistry(m *RpcMock, registry common.Address, metadata common.Address) {
	m.OnCall(registry, selector(contractCaller.ListRegistry, "getListStorageLocation"),
		handle(f, contractCaller.ListRegistry, "getListStorageLocation", func(args []interface{}) ([]interface{}, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			raw := f.locations[args[0].(*big.Int).String()]
			if raw == nil {
				raw = []byte{}
			}
			return []interface{}{raw}, nil
		}))

	m.OnCall(metadata, selector(contractCaller.AccountMetadata, "getValue"),
		handle(f, contractCaller.AccountMetadata, "getValue", func(args []interface{}) ([]interface{}, error) {
			if args[1].(string) != contractCaller.PrimaryListKey {
				return []interface{}{[]byte{}}, nil
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			value := f.primary[args[0].(common.Address)]
			if value == nil {
				value = []byte{}
			}
			return []interface{}{value}, nil
		}))
}

// RegisterRecords serves the list records contract.
func (f *FakeEfp) RegisterRecords(m *RpcMock, records common.Address) {
	getLog := func(slot *big.Int) [][]byte {
		f.mu.Lock()
		defer f.mu.Unlock()
		log := f.logs[slot.String()]
		if log == nil {
			return [][]byte{}
		}
		return append([][]byte{}, log...)
	}

	m.OnCall(records, selector(contractCaller.ListRecords, "getAllListOps"),
		handle(f, contractCaller.ListRecords, "getAllListOps", func(args []interface{}) ([]interface{}, error) {
			return []interface{}{getLog(args[0].(*big.Int))}, nil
		}))

	m.OnCall(records, selector(contractCaller.ListRecords, "getListOpCount"),
		handle(f, contractCaller.ListRecords, "getListOpCount", func(args []interface{}) ([]interface{}, error) {
			return []interface{}{big.NewInt(int64(len(getLog(args[0].(*big.Int)))))}, nil
		}))

	m.OnCall(records, selector(contractCaller.ListRecords, "getListOpsInRange"),
		handle(f, contractCaller.ListRecords, "getListOpsInRange", func(args []interface{}) ([]interface{}, error) {
			log := getLog(args[0].(*big.Int))
			start := args[1].(*big.Int).Uint64()
			end := args[2].(*big.Int).Uint64()
			if start > end || end > uint64(len(log)) {
				return nil, fmt.Errorf("invalid range")
			}
			return []interface{}{log[start:end]}, nil
		}))
}
