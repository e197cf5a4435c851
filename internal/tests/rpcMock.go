package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jarcoal/httpmock"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      uint              `json:"id"`
}

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      uint      `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type MethodHandler func(params []json.RawMessage) (any, error)

// CallHandler answers an eth_call. Returning an error produces a revert.
type CallHandler func(input []byte) ([]byte, error)

// RpcMock is a JSON-RPC node stub backed by an httpmock transport. It answers
// single and batched requests.
type RpcMock struct {
	Transport *httpmock.MockTransport

	mu           sync.Mutex
	methods      map[string]MethodHandler
	calls        map[string]CallHandler
	methodCounts map[string]int
	httpFailures int
}

func NewRpcMock(urls ...string) *RpcMock {
	m := &RpcMock{
		Transport:    httpmock.NewMockTransport(),
		methods:      make(map[string]MethodHandler),
		calls:        make(map[string]CallHandler),
		methodCounts: make(map[string]int),
	}
	m.methods["eth_call"] = m.handleEthCall
	for _, url := range urls {
		m.Transport.RegisterResponder(http.MethodPost, url, m.respond)
	}
	return m
}

func (m *RpcMock) HttpClient() *http.Client {
	return &http.Client{Transport: m.Transport}
}

func (m *RpcMock) OnMethod(method string, h MethodHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[method] = h
}

func callKey(to common.Address, selector []byte) string {
	return strings.ToLower(to.Hex()) + hexutil.Encode(selector)
}

func (m *RpcMock) OnCall(to common.Address, selector []byte, h CallHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[callKey(to, selector)] = h
}

// FailNextHttp makes the next n http requests fail with a 503.
func (m *RpcMock) FailNextHttp(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpFailures = n
}

func (m *RpcMock) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.methodCounts[method]
}

func (m *RpcMock) handleEthCall(params []json.RawMessage) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing call params")
	}
	var msg struct {
		To   common.Address `json:"to"`
		Data hexutil.Bytes  `json:"data"`
	}
	if err := json.Unmarshal(params[0], &msg); err != nil {
		return nil, err
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}

	m.mu.Lock()
	h, ok := m.calls[callKey(msg.To, msg.Data[:4])]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: no handler for %s", callKey(msg.To, msg.Data[:4]))
	}
	out, err := h(msg.Data)
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %s", err)
	}
	return hexutil.Encode(out), nil
}

func (m *RpcMock) dispatch(req *rpcRequest) *rpcResponse {
	m.mu.Lock()
	h, ok := m.methods[req.Method]
	m.methodCounts[req.Method]++
	m.mu.Unlock()

	res := &rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		res.Error = &rpcError{Code: -32601, Message: "method not found"}
		return res
	}
	result, err := h(req.Params)
	if err != nil {
		res.Error = &rpcError{Code: 3, Message: err.Error()}
		return res
	}
	res.Result = result
	return res
}

func (m *RpcMock) respond(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	if m.httpFailures > 0 {
		m.httpFailures--
		m.mu.Unlock()
		return httpmock.NewStringResponse(http.StatusServiceUnavailable, "unavailable"), nil
	}
	m.mu.Unlock()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		var batch []*rpcRequest
		if err := json.Unmarshal(body, &batch); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		responses := make([]*rpcResponse, 0, len(batch))
		// answer in reverse to exercise client side ordering
		for i := len(batch) - 1; i >= 0; i-- {
			responses = append(responses, m.dispatch(batch[i]))
		}
		return httpmock.NewJsonResponse(http.StatusOK, responses)
	}

	single := &rpcRequest{}
	if err := json.Unmarshal(body, single); err != nil {
		return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
	}
	return httpmock.NewJsonResponse(http.StatusOK, m.dispatch(single))
}
