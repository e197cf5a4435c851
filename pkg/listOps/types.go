package listOps

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	ListOpVersion  uint8 = 1
	RecordVersion  uint8 = 1
	AddressLength        = common.AddressLength
	RecordLength         = 1 + 1 + AddressLength
	ListOpLength         = 1 + 1 + RecordLength
	ListOpHexChars       = 2 + ListOpLength*2
)

type Opcode uint8

const (
	Opcode_AddRecord    Opcode = 1
	Opcode_RemoveRecord Opcode = 2
	Opcode_TagRecord    Opcode = 3
	Opcode_UntagRecord  Opcode = 4
)

func (o Opcode) IsKnown() bool {
	switch o {
	case Opcode_AddRecord, Opcode_RemoveRecord, Opcode_TagRecord, Opcode_UntagRecord:
		return true
	}
	return false
}

func (o Opcode) String() string {
	switch o {
	case Opcode_AddRecord:
		return "add"
	case Opcode_RemoveRecord:
		return "remove"
	case Opcode_TagRecord:
		return "tag"
	case Opcode_UntagRecord:
		return "untag"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

type RecordType uint8

const (
	RecordType_Address RecordType = 1
)

func (r RecordType) IsKnown() bool {
	return r == RecordType_Address
}

func (r RecordType) String() string {
	if r == RecordType_Address {
		return "address"
	}
	return fmt.Sprintf("unknown(%d)", uint8(r))
}

// AddressRecord is the payload carried by every list op.
type AddressRecord struct {
	Version    uint8
	RecordType RecordType
	Address    common.Address
}

// AddressHex renders the record address as lowercase 0x-prefixed hex.
func (r *AddressRecord) AddressHex() string {
	return hexutil.Encode(r.Address.Bytes())
}

func (r *AddressRecord) Bytes() []byte {
	b := make([]byte, 0, RecordLength)
	b = append(b, r.Version, uint8(r.RecordType))
	return append(b, r.Address.Bytes()...)
}

type ListOperation struct {
	Version uint8
	Opcode  Opcode
	Record  AddressRecord
}

func (op *ListOperation) Bytes() []byte {
	b := make([]byte, 0, ListOpLength)
	b = append(b, op.Version, uint8(op.Opcode))
	return append(b, op.Record.Bytes()...)
}

func (op *ListOperation) Hex() string {
	return hexutil.Encode(op.Bytes())
}

func (op *ListOperation) String() string {
	return fmt.Sprintf("v%d %s %s(v%d) %s", op.Version, op.Opcode, op.Record.RecordType, op.Record.Version, op.Record.AddressHex())
}
