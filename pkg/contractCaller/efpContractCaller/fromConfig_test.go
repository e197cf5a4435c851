package efpContractCaller

import (
	"testing"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/tests"
	"github.com/stretchr/testify/assert"
)

func Test_NewEfpContractCallerFromConfig(t *testing.T) {
	cfg := tests.GetConfig()
	l := tests.GetLogger()

	t.Run("Should build a client per configured chain", func(t *testing.T) {
		clients := NewEthereumClients(cfg, l)
		assert.Len(t, clients, 2)
		assert.Equal(t, tests.TestRegistryRpcUrl, clients[8453].BaseUrl())
		assert.Equal(t, tests.TestRecordsRpcUrl, clients[tests.TestRecordsChainId].BaseUrl())
	})
	t.Run("Should take registry addresses from config", func(t *testing.T) {
		cc := NewEfpContractCallerFromConfig(cfg, NewEthereumClients(cfg, l), l)
		assert.Equal(t, uint64(8453), cc.config.RegistryChainId)
		assert.Equal(t, registry, cc.config.ListRegistryAddress)
		assert.Equal(t, metadata, cc.config.AccountMetadataAddress)
	})
}
