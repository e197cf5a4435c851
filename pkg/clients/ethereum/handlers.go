package ethereum

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type ResponseParserFunc[T any] func(res json.RawMessage) (T, error)

type RequestResponseHandler[T any] struct {
	RequestMethod  *RequestMethod
	ResponseParser ResponseParserFunc[T]
}

func parseHexBytes(res json.RawMessage) ([]byte, error) {
	var b hexutil.Bytes
	if err := json.Unmarshal(res, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func parseHexUint64(res json.RawMessage) (uint64, error) {
	var n hexutil.Uint64
	if err := json.Unmarshal(res, &n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

var (
	RPCMethod_blockNumber = &RequestResponseHandler[uint64]{
		RequestMethod: &RequestMethod{
			Name:    "eth_blockNumber",
			Timeout: time.Second * 5,
		},
		ResponseParser: parseHexUint64,
	}
	RPCMethod_chainId = &RequestResponseHandler[uint64]{
		RequestMethod: &RequestMethod{
			Name:    "eth_chainId",
			Timeout: time.Second * 5,
		},
		ResponseParser: parseHexUint64,
	}
	RPCMethod_call = &RequestResponseHandler[[]byte]{
		RequestMethod: &RequestMethod{
			Name: "eth_call",
			// getAllListOps on a large list returns a big payload
			Timeout: time.Second * 15,
		},
		ResponseParser: parseHexBytes,
	}
)

var methodTimeouts = map[string]time.Duration{
	RPCMethod_blockNumber.RequestMethod.Name: RPCMethod_blockNumber.RequestMethod.Timeout,
	RPCMethod_chainId.RequestMethod.Name:     RPCMethod_chainId.RequestMethod.Timeout,
	RPCMethod_call.RequestMethod.Name:        RPCMethod_call.RequestMethod.Timeout,
}

func BlockNumberRequest(id uint) *RPCRequest {
	return &RPCRequest{
		JSONRPC: jsonRPCVersion,
		Method:  RPCMethod_blockNumber.RequestMethod.Name,
		ID:      id,
	}
}

func ChainIdRequest(id uint) *RPCRequest {
	return &RPCRequest{
		JSONRPC: jsonRPCVersion,
		Method:  RPCMethod_chainId.RequestMethod.Name,
		ID:      id,
	}
}

type CallMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// EthCallRequest builds an eth_call against block, which can be a hex block
// number or one of "latest", "safe", "finalized".
func EthCallRequest(to string, data []byte, block string, id uint) *RPCRequest {
	return &RPCRequest{
		JSONRPC: jsonRPCVersion,
		Method:  RPCMethod_call.RequestMethod.Name,
		Params: []interface{}{
			&CallMsg{To: to, Data: hexutil.Encode(data)},
			block,
		},
		ID: id,
	}
}
