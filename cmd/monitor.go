package cmd

import (
	"safeprice/service/monitor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"mon"},
	Short:   "degradation monitor",
}

func provideCmdMonitor(cmd *cobra.Command) *monitor.Monitor {
	return provideMonitor(cmd.Context(), provideStores(), provideSystem(), nil)
}

var monitorStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "degradation stats and buffer counters",
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := provideCmdMonitor(cmd).GetDegradationStats(cmd.Context())
		if err != nil {
			cmd.PrintErrln("get stats:", err)
			return
		}

		printJSON(cmd, stats)
	},
}

var monitorEventsCmd = &cobra.Command{
	Use:   "events [index...]",
	Short: "events by index, 0 is the newest",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := provideCmdMonitor(cmd)

		indexes := args
		if len(indexes) == 0 {
			for idx := 0; idx < m.GetCircularBufferStats(ctx).ActualCount; idx++ {
				indexes = append(indexes, cast.ToString(idx))
			}
		}

		for _, arg := range indexes {
			k, err := cast.ToIntE(arg)
			if err != nil {
				cmd.PrintErrln("parse index:", err)
				return
			}

			evt, err := m.GetEventAtIndex(ctx, k)
			if err != nil {
				cmd.PrintErrln("get event", k, ":", err)
				return
			}

			printJSON(cmd, evt)
		}
	},
}

var monitorDetailCmd = &cobra.Command{
	Use:   "detail <reason hash>",
	Short: "diagnostic text of a reason hash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		detail, err := provideCmdMonitor(cmd).HealthDetail(cmd.Context(), args[0])
		if err != nil {
			cmd.PrintErrln("get detail:", err)
			return
		}

		printJSON(cmd, detail)
	},
}

var monitorClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "reset the event buffer counters",
	Run: func(cmd *cobra.Command, args []string) {
		if err := provideCmdMonitor(cmd).ClearEvents(cmd.Context(), callerFlag(cmd)); err != nil {
			cmd.PrintErrln("clear events:", err)
			return
		}

		cmd.Println("events cleared")
	},
}

var authorizeUpgradeCmd = &cobra.Command{
	Use:   "authorize-upgrade",
	Short: "open the monitor upgrade window",
	Run: func(cmd *cobra.Command, args []string) {
		window, err := provideCmdMonitor(cmd).AuthorizeUpgrade(cmd.Context(), callerFlag(cmd))
		if err != nil {
			cmd.PrintErrln("authorize upgrade:", err)
			return
		}

		printJSON(cmd, window)
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "swap in a new analytics version inside the upgrade window",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := provideCmdMonitor(cmd)

		stats, err := m.GetDegradationStats(ctx)
		if err != nil {
			cmd.PrintErrln("get stats:", err)
			return
		}

		analytics := monitor.NewAnalytics(monitor.VersionedRegisterer(prometheus.NewRegistry(), stats.Version+1))
		version, err := m.Upgrade(ctx, callerFlag(cmd), analytics)
		if err != nil {
			cmd.PrintErrln("upgrade:", err)
			return
		}

		cmd.Println("analytics upgraded to version", version)
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(
		monitorStatsCmd,
		monitorEventsCmd,
		monitorDetailCmd,
		monitorClearCmd,
		authorizeUpgradeCmd,
		upgradeCmd,
	)
}
