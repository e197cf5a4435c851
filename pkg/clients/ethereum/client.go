package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	BlockTag_Latest = "latest"
)

type RequestMethod struct {
	Name    string
	Timeout time.Duration
}

type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint   `json:"id"`
}

type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint           `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

var jsonRPCVersion = "2.0"

var defaultBackoffs = []time.Duration{
	time.Second * 1,
	time.Second * 3,
	time.Second * 5,
	time.Second * 10,
}

type Client struct {
	Logger       *zap.Logger
	httpClient   *http.Client
	clientConfig *EthereumClientConfig
}

type EthereumClientConfig struct {
	BaseUrl             string
	NativeBatchCallSize int // Number of calls to put in a single batch request
	// Backoffs between retries of a failed call. Empty means no retries.
	Backoffs []time.Duration
}

func DefaultEthereumClientConfig(baseUrl string) *EthereumClientConfig {
	return &EthereumClientConfig{
		BaseUrl:             baseUrl,
		NativeBatchCallSize: 100,
		Backoffs:            defaultBackoffs,
	}
}

func NewClient(cfg *EthereumClientConfig, l *zap.Logger) *Client {
	client := &http.Client{
		Timeout: time.Second * 30,
	}
	if cfg.NativeBatchCallSize <= 0 {
		cfg.NativeBatchCallSize = 100
	}

	l.Sugar().Debugw("Creating new Ethereum client", zap.String("baseUrl", cfg.BaseUrl))

	return &Client{
		httpClient:   client,
		Logger:       l,
		clientConfig: cfg,
	}
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) BaseUrl() string {
	return c.clientConfig.BaseUrl
}

func (c *Client) GetBlockNumber(ctx context.Context) (uint64, error) {
	res, err := c.Call(ctx, BlockNumberRequest(1))
	if err != nil {
		return 0, err
	}
	return RPCMethod_blockNumber.ResponseParser(res.Result)
}

func (c *Client) GetChainId(ctx context.Context) (uint64, error) {
	res, err := c.Call(ctx, ChainIdRequest(1))
	if err != nil {
		return 0, err
	}
	return RPCMethod_chainId.ResponseParser(res.Result)
}

// EthCall executes a read only call against the latest block and returns the
// raw return data.
func (c *Client) EthCall(ctx context.Context, to string, data []byte) ([]byte, error) {
	res, err := c.Call(ctx, EthCallRequest(to, data, BlockTag_Latest, 1))
	if err != nil {
		return nil, err
	}
	out, err := RPCMethod_call.ResponseParser(res.Result)
	if err != nil {
		c.Logger.Sugar().Errorw("failed to parse eth_call result",
			zap.Error(err),
			zap.String("to", to),
			zap.String("raw response", string(res.Result)),
		)
		return nil, errors.Wrap(err, "failed to parse eth_call result")
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, body []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.clientConfig.BaseUrl, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received http error code %+v", response.StatusCode)
	}
	return responseBody, nil
}

func (c *Client) batchCall(ctx context.Context, requests []*RPCRequest) ([]*RPCResponse, error) {
	if len(requests) == 0 {
		return make([]*RPCResponse, 0), nil
	}
	requestBody, err := json.Marshal(requests)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal requests")
	}

	responseBody, err := c.post(ctx, requestBody, time.Second*20)
	if err != nil {
		return nil, err
	}

	// some nodes answer a rejected batch with a single error object
	if bytes.HasPrefix(bytes.TrimSpace(responseBody), []byte("{")) {
		errorResponse := RPCResponse{}
		if err := json.Unmarshal(responseBody, &errorResponse); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal error response")
		}
		if errorResponse.Error != nil {
			return nil, errors.Wrap(errorResponse.Error, "error payload returned from batch call")
		}
		return nil, fmt.Errorf("unexpected batch response: %s", string(responseBody))
	}

	destination := []*RPCResponse{}
	if err := json.Unmarshal(responseBody, &destination); err != nil {
		c.Logger.Sugar().Errorw("failed to unmarshal batch call response",
			zap.Error(err),
			zap.String("response", string(responseBody)),
		)
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}
	return destination, nil
}

// BatchCall splits requests into native JSON-RPC batches of
// NativeBatchCallSize, sends them in parallel and returns the responses
// sorted by request id. Request ids must be unique.
func (c *Client) BatchCall(ctx context.Context, requests []*RPCRequest) ([]*RPCResponse, error) {
	if len(requests) == 0 {
		c.Logger.Sugar().Warnw("No requests to batch call")
		return make([]*RPCResponse, 0), nil
	}
	batches := [][]*RPCRequest{}
	for start := 0; start < len(requests); start += c.clientConfig.NativeBatchCallSize {
		end := min(start+c.clientConfig.NativeBatchCallSize, len(requests))
		batches = append(batches, requests[start:end])
	}
	c.Logger.Sugar().Debugw(fmt.Sprintf("Batching '%v' requests into '%v' batches", len(requests), len(batches)))

	var mu sync.Mutex
	var firstErr error
	results := make([]*RPCResponse, 0, len(requests))

	wg := sync.WaitGroup{}
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, b []*RPCRequest) {
			defer wg.Done()

			res, err := c.batchCall(ctx, b)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.Logger.Sugar().Errorw("failed to batch call", zap.Int("batch", i), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results = append(results, res...)
		}(i, batch)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if len(results) != len(requests) {
		return nil, fmt.Errorf("failed to fetch results for all requests. Expected %d, got %d", len(requests), len(results))
	}

	slices.SortFunc(results, func(i, j *RPCResponse) int {
		if i.ID == nil || j.ID == nil {
			return 0
		}
		return int(*i.ID) - int(*j.ID)
	})
	return results, nil
}

func (c *Client) call(ctx context.Context, rpcRequest *RPCRequest) (*RPCResponse, error) {
	requestBody, err := json.Marshal(rpcRequest)
	if err != nil {
		return nil, err
	}
	c.Logger.Sugar().Debugw("Request body", zap.String("requestBody", string(requestBody)))

	timeout, ok := methodTimeouts[rpcRequest.Method]
	if !ok {
		timeout = time.Second * 5
	}

	responseBody, err := c.post(ctx, requestBody, timeout)
	if err != nil {
		return nil, err
	}

	destination := &RPCResponse{}
	if err := json.Unmarshal(responseBody, destination); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}
	if destination.Error != nil {
		return nil, destination.Error
	}
	return destination, nil
}

// Call performs the request, retrying with the configured backoffs. RPC level
// errors such as reverts are returned immediately.
func (c *Client) Call(ctx context.Context, rpcRequest *RPCRequest) (*RPCResponse, error) {
	res, err := c.call(ctx, rpcRequest)
	if err == nil {
		return res, nil
	}

	for _, backoff := range c.clientConfig.Backoffs {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return nil, err
		}
		c.Logger.Sugar().Errorw("Failed to call",
			zap.Error(err),
			zap.Duration("backoff", backoff),
			zap.String("method", rpcRequest.Method),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		res, err = c.call(ctx, rpcRequest)
		if err == nil {
			c.Logger.Sugar().Infow("Successfully called after backoff",
				zap.Duration("backoff", backoff),
				zap.String("method", rpcRequest.Method),
			)
			return res, nil
		}
	}
	if len(c.clientConfig.Backoffs) > 0 {
		c.Logger.Sugar().Errorw("Exceeded retries for Call", zap.String("method", rpcRequest.Method), zap.Error(err))
	}
	return nil, err
}
