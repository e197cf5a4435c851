package cmd

import (
	"os"
	"strings"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "efp-sidecar",
	Short: "Encode, decode and replay Ethereum Follow Protocol list operations",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().Bool(config.LogConsole, false, `Log in console format instead of JSON`)

	rootCmd.PersistentFlags().Uint64(config.RegistryChainId, uint64(config.Chain_Base), `Chain id the list registry and account metadata contracts are deployed on`)
	rootCmd.PersistentFlags().String(config.RegistryListRegistryAddress, config.DefaultListRegistryAddress, `Address of the list registry contract`)
	rootCmd.PersistentFlags().String(config.RegistryAccountMetadataAddress, config.DefaultAccountMetadataAddress, `Address of the account metadata contract`)

	rootCmd.PersistentFlags().StringSlice(config.EthereumRpcUrls, []string{}, `Comma separated "<chainId>=<url>" entries, e.g. "8453=https://mainnet.base.org"`)
	rootCmd.PersistentFlags().Int(config.EthereumRpcNativeBatchCallSize, 100, `The number of calls to put in a single native batch request`)

	rootCmd.PersistentFlags().Int(config.ListOpsPageSize, 0, `Fetch list ops in pages of this size; 0 fetches the whole log at once`)

	rootCmd.PersistentFlags().Int(config.CacheSize, 1024, `Maximum number of cached storage locations and logs`)
	rootCmd.PersistentFlags().Duration(config.CacheTTL, 0, `How long to cache storage locations and logs; 0 disables caching`)

	rootCmd.PersistentFlags().Int(config.QueryConcurrency, 8, `Maximum number of lists loaded concurrently`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(followsCmd)
	rootCmd.AddCommand(followingCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runVersionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindCommandFlags makes a subcommand's local flags visible to viper.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}
