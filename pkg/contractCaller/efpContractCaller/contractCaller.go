package efpContractCaller

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/clients/ethereum"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/contractCaller"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type EfpContractCallerConfig struct {
	RegistryChainId        uint64
	ListRegistryAddress    common.Address
	AccountMetadataAddress common.Address
}

// EfpContractCaller reads the list registry on the registry chain and list
// records on whichever chain a storage location points at.
type EfpContractCaller struct {
	config  *EfpContractCallerConfig
	clients map[uint64]*ethereum.Client
	logger  *zap.Logger
}

func NewEfpContractCaller(cfg *EfpContractCallerConfig, clients map[uint64]*ethereum.Client, l *zap.Logger) *EfpContractCaller {
	return &EfpContractCaller{
		config:  cfg,
		clients: clients,
		logger:  l,
	}
}

// NewEthereumClients builds one rpc client per configured chain.
func NewEthereumClients(cfg *config.Config, l *zap.Logger) map[uint64]*ethereum.Client {
	clients := make(map[uint64]*ethereum.Client, len(cfg.EthereumConfig.RpcUrls))
	for chainId, url := range cfg.EthereumConfig.RpcUrls {
		clientConfig := ethereum.DefaultEthereumClientConfig(url)
		if cfg.EthereumConfig.NativeBatchCallSize > 0 {
			clientConfig.NativeBatchCallSize = cfg.EthereumConfig.NativeBatchCallSize
		}
		clients[chainId] = ethereum.NewClient(clientConfig, l)
	}
	return clients
}

func NewEfpContractCallerFromConfig(cfg *config.Config, clients map[uint64]*ethereum.Client, l *zap.Logger) *EfpContractCaller {
	return NewEfpContractCaller(&EfpContractCallerConfig{
		RegistryChainId:        uint64(cfg.RegistryConfig.ChainId),
		ListRegistryAddress:    common.HexToAddress(cfg.RegistryConfig.ListRegistryAddress),
		AccountMetadataAddress: common.HexToAddress(cfg.RegistryConfig.AccountMetadataAddress),
	}, clients, l)
}

func (cc *EfpContractCaller) getClient(chainId uint64) (*ethereum.Client, error) {
	client, ok := cc.clients[chainId]
	if !ok {
		return nil, errors.Wrapf(contractCaller.ErrNoRpcForChain, "chain %d", chainId)
	}
	return client, nil
}

func (cc *EfpContractCaller) call(ctx context.Context, chainId uint64, contract common.Address, a abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	client, err := cc.getClient(chainId)
	if err != nil {
		return nil, err
	}
	data, err := a.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	out, err := client.EthCall(ctx, contract.Hex(), data)
	if err != nil {
		cc.logger.Sugar().Errorw("Contract call failed",
			zap.String("method", method),
			zap.Uint64("chainId", chainId),
			zap.String("contract", contract.Hex()),
			zap.Error(err),
		)
		return nil, errors.Wrapf(err, "%s call failed", method)
	}

	results, err := a.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s", method)
	}
	return results, nil
}

func encodeOps(raw [][]byte) []string {
	ops := make([]string, 0, len(raw))
	for _, op := range raw {
		ops = append(ops, hexutil.Encode(op))
	}
	return ops
}

func (cc *EfpContractCaller) GetListStorageLocation(ctx context.Context, listId *big.Int) (string, error) {
	results, err := cc.call(ctx, cc.config.RegistryChainId, cc.config.ListRegistryAddress, contractCaller.ListRegistry, "getListStorageLocation", listId)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(results[0].([]byte)), nil
}

// GetListStorageLocations resolves many lists with one batched round trip.
// Per list failures are reported on the result rather than failing the batch.
func (cc *EfpContractCaller) GetListStorageLocations(ctx context.Context, listIds []*big.Int) ([]*contractCaller.StorageLocationResult, error) {
	client, err := cc.getClient(cc.config.RegistryChainId)
	if err != nil {
		return nil, err
	}

	requests := make([]*ethereum.RPCRequest, 0, len(listIds))
	for i, listId := range listIds {
		data, err := contractCaller.ListRegistry.Pack("getListStorageLocation", listId)
		if err != nil {
			return nil, errors.Wrap(err, "failed to pack getListStorageLocation")
		}
		requests = append(requests, ethereum.EthCallRequest(cc.config.ListRegistryAddress.Hex(), data, ethereum.BlockTag_Latest, uint(i)))
	}

	responses, err := client.BatchCall(ctx, requests)
	if err != nil {
		return nil, errors.Wrap(err, "failed to batch fetch storage locations")
	}

	results := make([]*contractCaller.StorageLocationResult, len(listIds))
	for i, listId := range listIds {
		results[i] = &contractCaller.StorageLocationResult{ListId: listId}
	}
	for _, res := range responses {
		if res.ID == nil || int(*res.ID) >= len(results) {
			continue
		}
		result := results[*res.ID]
		if res.Error != nil {
			result.Err = res.Error
			continue
		}
		out, err := ethereum.RPCMethod_call.ResponseParser(res.Result)
		if err != nil {
			result.Err = err
			continue
		}
		unpacked, err := contractCaller.ListRegistry.Unpack("getListStorageLocation", out)
		if err != nil {
			result.Err = errors.Wrap(err, "failed to unpack getListStorageLocation")
			continue
		}
		result.Raw = hexutil.Encode(unpacked[0].([]byte))
	}
	for _, result := range results {
		if result.Raw == "" && result.Err == nil {
			result.Err = errors.Errorf("no response for list %s", result.ListId)
		}
	}
	return results, nil
}

func (cc *EfpContractCaller) GetAllListOps(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int) ([]string, error) {
	results, err := cc.call(ctx, chainId, contract, contractCaller.ListRecords, "getAllListOps", slot)
	if err != nil {
		return nil, err
	}
	return encodeOps(results[0].([][]byte)), nil
}

func (cc *EfpContractCaller) GetListOpCount(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int) (uint64, error) {
	results, err := cc.call(ctx, chainId, contract, contractCaller.ListRecords, "getListOpCount", slot)
	if err != nil {
		return 0, err
	}
	count := results[0].(*big.Int)
	if !count.IsUint64() {
		return 0, errors.Errorf("list op count out of range: %s", count)
	}
	return count.Uint64(), nil
}

func (cc *EfpContractCaller) GetListOpsInRange(ctx context.Context, chainId uint64, contract common.Address, slot *big.Int, start uint64, end uint64) ([]string, error) {
	results, err := cc.call(ctx, chainId, contract, contractCaller.ListRecords, "getListOpsInRange",
		slot,
		new(big.Int).SetUint64(start),
		new(big.Int).SetUint64(end),
	)
	if err != nil {
		return nil, err
	}
	return encodeOps(results[0].([][]byte)), nil
}

// GetPrimaryList returns the list id a user has set as their primary list.
func (cc *EfpContractCaller) GetPrimaryList(ctx context.Context, user common.Address) (*big.Int, bool, error) {
	if cc.config.AccountMetadataAddress == (common.Address{}) {
		return nil, false, errors.New("account metadata address not configured")
	}
	results, err := cc.call(ctx, cc.config.RegistryChainId, cc.config.AccountMetadataAddress, contractCaller.AccountMetadata, "getValue", user, contractCaller.PrimaryListKey)
	if err != nil {
		return nil, false, err
	}
	value := results[0].([]byte)
	if len(value) == 0 {
		return nil, false, nil
	}
	if len(value) > 32 {
		return nil, false, errors.Errorf("primary list value too long: %d bytes", len(value))
	}
	return new(big.Int).SetBytes(value), true, nil
}
