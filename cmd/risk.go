package cmd

import (
	"safeprice/core"
	"safeprice/pkg/number"

	"github.com/spf13/cobra"
)

var riskCmd = &cobra.Command{
	Use:   "risk <account...>",
	Short: "risk assessments of accounts",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := provideMonitor(ctx, provideStores(), provideSystem(), nil)
		risks := provideRiskService(m)

		snapshots, err := risks.GetUserRiskAssessments(ctx, args)
		if err != nil {
			cmd.PrintErrln("risk assessments:", err)
			return
		}

		printJSON(cmd, snapshots)
	},
}

var riskPushCmd = &cobra.Command{
	Use:   "push <account> <collateral> <debt> <locked guarantee>",
	Short: "recompute the risk snapshot from supplied totals",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := provideMonitor(ctx, provideStores(), provideSystem(), nil)
		risks := provideRiskService(m)

		snapshot, err := risks.PushRiskSnapshot(ctx, callerFlag(cmd), &core.PositionTotals{
			Account:         args[0],
			TotalCollateral: number.Decimal(args[1]),
			TotalDebt:       number.Decimal(args[2]),
			LockedGuarantee: number.Decimal(args[3]),
		})
		if err != nil {
			cmd.PrintErrln("push risk snapshot:", err)
			return
		}

		printJSON(cmd, snapshot)
	},
}

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.AddCommand(riskPushCmd)
}
