package cmd

import (
	"time"

	"safeprice/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "asset price feed configs",
}

var listAssetsCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "list configured assets",
	Run: func(cmd *cobra.Command, args []string) {
		assets, err := providePriceService(provideStores()).Assets(cmd.Context())
		if err != nil {
			cmd.PrintErrln("list assets:", err)
			return
		}

		printJSON(cmd, assets)
	},
}

var configureAssetCmd = &cobra.Command{
	Use:     "configure <asset id> <source id> <decimals> <max age>",
	Aliases: []string{"cfg"},
	Short:   "create or update an asset config",
	Long: `args->
	max age: duration, e.g. 1h
flags->
	pegged: bounded by the reference settlement asset price`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		maxAge, err := time.ParseDuration(args[3])
		if err != nil {
			cmd.PrintErrln("parse max age:", err)
			return
		}

		pegged, _ := cmd.Flags().GetBool("pegged")
		config := &core.AssetConfig{
			AssetID:  args[0],
			SourceID: args[1],
			Decimals: cast.ToInt32(args[2]),
			MaxAge:   maxAge,
			Pegged:   pegged,
		}

		if err := providePriceService(provideStores()).ConfigureAsset(cmd.Context(), callerFlag(cmd), config); err != nil {
			cmd.PrintErrln("configure asset:", err)
			return
		}

		cmd.Println("asset configured:", config.AssetID)
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active <asset id> <true|false>",
	Short: "activate or deactivate an asset",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		active, err := cast.ToBoolE(args[1])
		if err != nil {
			cmd.PrintErrln("parse active:", err)
			return
		}

		if err := providePriceService(provideStores()).SetActive(cmd.Context(), callerFlag(cmd), args[0], active); err != nil {
			cmd.PrintErrln("set active:", err)
			return
		}

		cmd.Println("asset", args[0], "active:", active)
	},
}

func init() {
	rootCmd.AddCommand(assetCmd)
	assetCmd.AddCommand(listAssetsCmd, configureAssetCmd, setActiveCmd)
	configureAssetCmd.Flags().Bool("pegged", false, "pegged asset")
}
