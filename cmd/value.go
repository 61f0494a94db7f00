package cmd

import (
	"safeprice/core"
	"safeprice/pkg/number"

	"github.com/spf13/cobra"
)

var valueCmd = &cobra.Command{
	Use:   "value <asset id> <amount> [<asset id> <amount>...]",
	Short: "value amounts with the configured fallback policy",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return cobra.ExactArgs(2)(cmd, args)
		}

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		system := provideSystem()
		s := provideStores()
		prices := providePriceService(s)
		valuations := provideValuationService(prices, provideMonitor(ctx, s, system, nil))

		policy := cfg.Degradation.Policy()
		if cmd.Flags().Changed("ratio") {
			policy.ConservativeRatioBps, _ = cmd.Flags().GetInt64("ratio")
		}

		items := make([]*core.ValuationRequest, 0, len(args)/2)
		for idx := 0; idx < len(args); idx += 2 {
			items = append(items, &core.ValuationRequest{
				AssetID: args[idx],
				Amount:  number.Decimal(args[idx+1]),
			})
		}

		results, err := valuations.GetAssetValuesWithFallback(ctx, items, policy)
		if err != nil {
			cmd.PrintErrln("value assets:", err)
			return
		}

		printJSON(cmd, results)
	},
}

func init() {
	rootCmd.AddCommand(valueCmd)
	valueCmd.Flags().Int64("ratio", 0, "override the conservative ratio in bps")
}
