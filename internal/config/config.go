package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "EFP_SIDECAR"

type Chain uint64

const (
	Chain_Mainnet  Chain = 1
	Chain_Optimism Chain = 10
	Chain_Base     Chain = 8453
	Chain_Sepolia  Chain = 11155111
)

func (c Chain) String() string {
	switch c {
	case Chain_Mainnet:
		return "mainnet"
	case Chain_Optimism:
		return "optimism"
	case Chain_Base:
		return "base"
	case Chain_Sepolia:
		return "sepolia"
	default:
		return strconv.FormatUint(uint64(c), 10)
	}
}

type Config struct {
	Debug            bool
	LogConsole       bool
	RegistryConfig   RegistryConfig
	EthereumConfig   EthereumRpcConfig
	ListOpsConfig    ListOpsConfig
	CacheConfig      CacheConfig
	QueryConfig      QueryConfig
	WatchConfig      WatchConfig
	PrometheusConfig PrometheusConfig
	DataDogConfig    DataDogConfig
}

// RegistryConfig locates the EFP contracts that are read before a list's
// storage location is known.
type RegistryConfig struct {
	ChainId                Chain
	ListRegistryAddress    string
	AccountMetadataAddress string
}

type EthereumRpcConfig struct {
	// chain id -> rpc url
	RpcUrls             map[uint64]string
	NativeBatchCallSize int

	rawRpcUrls []string
}

type ListOpsConfig struct {
	// PageSize of 0 fetches the whole log with a single getAllListOps call.
	PageSize int
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type QueryConfig struct {
	Concurrency int
}

type WatchConfig struct {
	Interval time.Duration
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

var (
	Debug      = "debug"
	LogConsole = "log-console"

	RegistryChainId                = "registry.chain-id"
	RegistryListRegistryAddress    = "registry.list-registry-address"
	RegistryAccountMetadataAddress = "registry.account-metadata-address"

	EthereumRpcUrls                = "ethereum.rpc-urls"
	EthereumRpcNativeBatchCallSize = "ethereum.native-batch-call-size"

	ListOpsPageSize = "list-ops.page-size"

	CacheSize = "cache.size"
	CacheTTL  = "cache.ttl"

	QueryConcurrency = "query.concurrency"

	WatchInterval = "watch.interval"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample-rate"
)

// Base deployment of the EFP contracts.
const (
	DefaultListRegistryAddress    = "0x0E688f5DCa4a0a4729946ACbC44C792341714e08"
	DefaultAccountMetadataAddress = "0x5289fE5daBC021D02FDDf23d4a4DF96F4E0F17EF"
)

func NewConfig() *Config {
	return &Config{
		Debug:      viper.GetBool(normalizeFlagName(Debug)),
		LogConsole: viper.GetBool(normalizeFlagName(LogConsole)),

		RegistryConfig: RegistryConfig{
			ChainId:                Chain(viper.GetUint64(normalizeFlagName(RegistryChainId))),
			ListRegistryAddress:    viper.GetString(normalizeFlagName(RegistryListRegistryAddress)),
			AccountMetadataAddress: viper.GetString(normalizeFlagName(RegistryAccountMetadataAddress)),
		},

		EthereumConfig: EthereumRpcConfig{
			RpcUrls:             parseRpcUrlsOrEmpty(viper.GetStringSlice(normalizeFlagName(EthereumRpcUrls))),
			NativeBatchCallSize: viper.GetInt(normalizeFlagName(EthereumRpcNativeBatchCallSize)),
			rawRpcUrls:          viper.GetStringSlice(normalizeFlagName(EthereumRpcUrls)),
		},

		ListOpsConfig: ListOpsConfig{
			PageSize: viper.GetInt(normalizeFlagName(ListOpsPageSize)),
		},

		CacheConfig: CacheConfig{
			Size: viper.GetInt(normalizeFlagName(CacheSize)),
			TTL:  viper.GetDuration(normalizeFlagName(CacheTTL)),
		},

		QueryConfig: QueryConfig{
			Concurrency: viper.GetInt(normalizeFlagName(QueryConcurrency)),
		},

		WatchConfig: WatchConfig{
			Interval: viper.GetDuration(normalizeFlagName(WatchInterval)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},
	}
}

// Validate checks the values every command depends on.
func (c *Config) Validate() error {
	if _, err := ParseRpcUrls(c.EthereumConfig.rawRpcUrls); err != nil {
		return err
	}
	if !common.IsHexAddress(c.RegistryConfig.ListRegistryAddress) {
		return errors.Errorf("%s is not a valid address: %q", RegistryListRegistryAddress, c.RegistryConfig.ListRegistryAddress)
	}
	if c.RegistryConfig.AccountMetadataAddress != "" && !common.IsHexAddress(c.RegistryConfig.AccountMetadataAddress) {
		return errors.Errorf("%s is not a valid address: %q", RegistryAccountMetadataAddress, c.RegistryConfig.AccountMetadataAddress)
	}
	if _, ok := c.EthereumConfig.RpcUrls[uint64(c.RegistryConfig.ChainId)]; !ok {
		return errors.Errorf("no rpc url configured for registry chain %s", c.RegistryConfig.ChainId)
	}
	if c.ListOpsConfig.PageSize < 0 {
		return errors.Errorf("%s must not be negative", ListOpsPageSize)
	}
	return nil
}

func (c *Config) GetRpcUrl(chainId uint64) (string, bool) {
	url, ok := c.EthereumConfig.RpcUrls[chainId]
	return url, ok
}

// ParseRpcUrls parses entries of the form "<chainId>=<url>".
func ParseRpcUrls(entries []string) (map[uint64]string, error) {
	urls := make(map[uint64]string)
	for _, entry := range parseListEnvVar(strings.Join(entries, ",")) {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid rpc url entry %q, expected <chainId>=<url>", entry)
		}
		chainId, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id in rpc url entry %q: %w", entry, err)
		}
		urls[chainId] = strings.TrimSpace(parts[1])
	}
	return urls, nil
}

func parseRpcUrlsOrEmpty(entries []string) map[uint64]string {
	urls, err := ParseRpcUrls(entries)
	if err != nil {
		return map[uint64]string{}
	}
	return urls
}

func parseListEnvVar(envVar string) []string {
	if envVar == "" {
		return []string{}
	}
	l := make([]string, 0)
	for _, s := range strings.Split(envVar, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			l = append(l, s)
		}
	}
	return l
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}
