package contractCaller

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const ListRegistryAbi = `[
	{
		"type": "function",
		"name": "getListStorageLocation",
		"stateMutability": "view",
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bytes"}]
	}
]`

const ListRecordsAbi = `[
	{
		"type": "function",
		"name": "getAllListOps",
		"stateMutability": "view",
		"inputs": [{"name": "slot", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bytes[]"}]
	},
	{
		"type": "function",
		"name": "getListOpCount",
		"stateMutability": "view",
		"inputs": [{"name": "slot", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "getListOpsInRange",
		"stateMutability": "view",
		"inputs": [
			{"name": "slot", "type": "uint256"},
			{"name": "start", "type": "uint256"},
			{"name": "end", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bytes[]"}]
	},
	{
		"type": "function",
		"name": "applyListOps",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "slot", "type": "uint256"},
			{"name": "ops", "type": "bytes[]"}
		],
		"outputs": []
	}
]`

const AccountMetadataAbi = `[
	{
		"type": "function",
		"name": "getValue",
		"stateMutability": "view",
		"inputs": [
			{"name": "addr", "type": "address"},
			{"name": "key", "type": "string"}
		],
		"outputs": [{"name": "", "type": "bytes"}]
	}
]`

var (
	ListRegistry    = mustParseAbi(ListRegistryAbi)
	ListRecords     = mustParseAbi(ListRecordsAbi)
	AccountMetadata = mustParseAbi(AccountMetadataAbi)
)

func mustParseAbi(raw string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return a
}
