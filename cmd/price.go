package cmd

import (
	"time"

	"safeprice/pkg/number"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "asset prices",
}

var updatePriceCmd = &cobra.Command{
	Use:   "update <asset id> <price> [timestamp]",
	Short: "push a price, scaled by the asset decimals",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		ts := time.Now().Unix()
		if len(args) > 2 {
			ts = cast.ToInt64(args[2])
		}

		price := number.Decimal(args[1])
		if !price.IsPositive() {
			cmd.PrintErrln("invalid price", args[1])
			return
		}

		if err := providePriceService(provideStores()).UpdatePrice(cmd.Context(), callerFlag(cmd), args[0], price, ts); err != nil {
			cmd.PrintErrln("update price:", err)
			return
		}

		cmd.Println("price updated:", args[0], price, ts)
	},
}

var getPriceCmd = &cobra.Command{
	Use:   "get <asset id>",
	Short: "strict price read",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		prices := providePriceService(provideStores())

		if info, _ := cmd.Flags().GetBool("info"); info {
			v, err := prices.GetPriceInfo(ctx, args[0])
			if err != nil {
				cmd.PrintErrln("get price info:", err)
				return
			}

			printJSON(cmd, v)
			return
		}

		record, err := prices.GetPrice(ctx, args[0])
		if err != nil {
			cmd.PrintErrln("get price:", err)
			return
		}

		printJSON(cmd, record)
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.AddCommand(updatePriceCmd, getPriceCmd)
	getPriceCmd.Flags().Bool("info", false, "non-strict read")
}
