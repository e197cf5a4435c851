package storageLocation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/listOps"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	versionOffset  = 0
	listTypeOffset = 1
	chainIdOffset  = 2
	contractOffset = 34
	slotOffset     = 54

	// LocationLength is the encoded size of a storage location descriptor.
	LocationLength = 86
)

var ErrLocationTooShort = errors.New("storage location too short")

type ListType uint8

const (
	ListType_OnChain ListType = 1
)

func (lt ListType) String() string {
	if lt == ListType_OnChain {
		return "onchain"
	}
	return fmt.Sprintf("unknown(%d)", uint8(lt))
}

// StorageLocation points at the contract storage holding a list's op log.
type StorageLocation struct {
	Version         uint8
	ListType        ListType
	ChainId         *uint256.Int
	ContractAddress common.Address
	Slot            *uint256.Int
}

func (sl *StorageLocation) IsOnChain() bool {
	return sl.ListType == ListType_OnChain
}

// ChainIdUint64 returns the chain id and false when it does not fit in 64 bits.
func (sl *StorageLocation) ChainIdUint64() (uint64, bool) {
	v, overflow := sl.ChainId.Uint64WithOverflow()
	return v, !overflow
}

func (sl *StorageLocation) SlotBig() *big.Int {
	return sl.Slot.ToBig()
}

func (sl *StorageLocation) ContractHex() string {
	return hexutil.Encode(sl.ContractAddress.Bytes())
}

// Key identifies the op log this location points at.
func (sl *StorageLocation) Key() string {
	return fmt.Sprintf("%s:%s:%s", sl.ChainId.Dec(), sl.ContractHex(), sl.Slot.Hex())
}

func (sl *StorageLocation) Bytes() []byte {
	b := make([]byte, LocationLength)
	b[versionOffset] = sl.Version
	b[listTypeOffset] = uint8(sl.ListType)

	chainId := sl.ChainId.Bytes32()
	copy(b[chainIdOffset:contractOffset], chainId[:])
	copy(b[contractOffset:slotOffset], sl.ContractAddress.Bytes())
	slot := sl.Slot.Bytes32()
	copy(b[slotOffset:LocationLength], slot[:])
	return b
}

func (sl *StorageLocation) Hex() string {
	return hexutil.Encode(sl.Bytes())
}

func EncodeStorageLocation(version uint8, listType ListType, chainId *uint256.Int, contract common.Address, slot *uint256.Int) string {
	sl := &StorageLocation{
		Version:         version,
		ListType:        listType,
		ChainId:         chainId,
		ContractAddress: contract,
		Slot:            slot,
	}
	return sl.Hex()
}

// DecodeStorageLocation decodes the descriptor returned by the list registry.
// Only the structure is checked; version and list type are left to the caller.
func DecodeStorageLocation(raw string) (*StorageLocation, error) {
	b, err := listOps.DecodeHex(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode storage location hex")
	}
	return DecodeStorageLocationBytes(b)
}

func DecodeStorageLocationBytes(b []byte) (*StorageLocation, error) {
	if len(b) < LocationLength {
		return nil, errors.Wrapf(ErrLocationTooShort, "expected at least %d bytes, got %d", LocationLength, len(b))
	}
	return &StorageLocation{
		Version:         b[versionOffset],
		ListType:        ListType(b[listTypeOffset]),
		ChainId:         new(uint256.Int).SetBytes32(b[chainIdOffset:contractOffset]),
		ContractAddress: common.BytesToAddress(b[contractOffset:slotOffset]),
		Slot:            new(uint256.Int).SetBytes32(b[slotOffset:LocationLength]),
	}, nil
}
