package listOps

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var (
	// ErrUndecodable marks a list op that cannot be structurally decoded.
	// Replay skips such entries.
	ErrUndecodable    = errors.New("undecodable list op")
	ErrUnknownAction  = errors.New("unknown batch action")
	ErrInvalidAddress = errors.New("invalid address")
)

type Action string

const (
	Action_Follow   Action = "follow"
	Action_Unfollow Action = "unfollow"
)

type BatchEntry struct {
	Action  Action
	Address common.Address
}

// ParseAddress accepts a 40 hex char address with an optional 0x prefix, in any case.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q", s)
	}
	return common.HexToAddress(s), nil
}

// EncodeAddressRecord returns the 22 byte address record for addr.
func EncodeAddressRecord(addr common.Address) []byte {
	r := &AddressRecord{
		Version:    RecordVersion,
		RecordType: RecordType_Address,
		Address:    addr,
	}
	return r.Bytes()
}

func encodeListOp(opcode Opcode, addr common.Address) string {
	b := make([]byte, 0, ListOpLength)
	b = append(b, ListOpVersion, uint8(opcode))
	b = append(b, EncodeAddressRecord(addr)...)
	return hexutil.Encode(b)
}

func EncodeFollowOperation(addr common.Address) string {
	return encodeListOp(Opcode_AddRecord, addr)
}

func EncodeUnfollowOperation(addr common.Address) string {
	return encodeListOp(Opcode_RemoveRecord, addr)
}

// EncodeBatchOperations encodes entries in the order given. The order becomes
// the append order of the list log.
func EncodeBatchOperations(entries []*BatchEntry) ([]string, error) {
	ops := make([]string, 0, len(entries))
	for i, e := range entries {
		switch e.Action {
		case Action_Follow:
			ops = append(ops, EncodeFollowOperation(e.Address))
		case Action_Unfollow:
			ops = append(ops, EncodeUnfollowOperation(e.Address))
		default:
			return nil, errors.Wrapf(ErrUnknownAction, "entry %d: %q", i, e.Action)
		}
	}
	return ops, nil
}

// DecodeHex strips an optional 0x/0X prefix and decodes the remainder.
func DecodeHex(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw[2:]
	} else if !strings.HasPrefix(raw, "0x") {
		raw = "0x" + raw
	}
	return hexutil.Decode(raw)
}

// DecodeListOp decodes a single list op. Any structural failure is returned
// wrapped in ErrUndecodable; unknown opcodes and record types are not errors.
func DecodeListOp(raw string) (*ListOperation, error) {
	b, err := DecodeHex(raw)
	if err != nil {
		return nil, errors.Wrap(ErrUndecodable, err.Error())
	}
	return DecodeListOpBytes(b)
}

func DecodeListOpBytes(b []byte) (*ListOperation, error) {
	if len(b) < ListOpLength {
		return nil, errors.Wrapf(ErrUndecodable, "expected at least %d bytes, got %d", ListOpLength, len(b))
	}
	return &ListOperation{
		Version: b[0],
		Opcode:  Opcode(b[1]),
		Record: AddressRecord{
			Version:    b[2],
			RecordType: RecordType(b[3]),
			Address:    common.BytesToAddress(b[4:ListOpLength]),
		},
	}, nil
}
