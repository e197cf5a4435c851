package tests

import (
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/ethereumfollowprotocol/efp-sidecar/internal/logger"
	"go.uber.org/zap"
)

const (
	TestRegistryRpcUrl = "http://registry.rpc.test"
	TestRecordsRpcUrl  = "http://records.rpc.test"

	TestListRegistryAddress    = "0x0e688f5dca4a0a4729946acbc44c792341714e08"
	TestAccountMetadataAddress = "0x5289fe5dabc021d02fddf23d4a4df96f4e0f17ef"
	TestListRecordsAddress     = "0x41aa48ef3c0446b46a5b1cc6337ff3d3716e2a33"

	TestRecordsChainId uint64 = 10
)

// GetConfig returns a config pointing the registry at Base and list records
// at Optimism, both served by mocked rpc urls.
func GetConfig() *config.Config {
	return &config.Config{
		RegistryConfig: config.RegistryConfig{
			ChainId:                config.Chain_Base,
			ListRegistryAddress:    TestListRegistryAddress,
			AccountMetadataAddress: TestAccountMetadataAddress,
		},
		EthereumConfig: config.EthereumRpcConfig{
			RpcUrls: map[uint64]string{
				uint64(config.Chain_Base): TestRegistryRpcUrl,
				TestRecordsChainId:        TestRecordsRpcUrl,
			},
			NativeBatchCallSize: 2,
		},
		CacheConfig: config.CacheConfig{
			Size: 16,
		},
		QueryConfig: config.QueryConfig{
			Concurrency: 4,
		},
	}
}

func GetLogger() *zap.Logger {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	if err != nil {
		panic(err)
	}
	return l
}
