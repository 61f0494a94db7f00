package cmd

import (
	"context"
	"sync"

	"safeprice/core"
	"safeprice/worker"
	"safeprice/worker/priceoracle"
	"safeprice/worker/riskscan"

	"github.com/fox-one/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "safeprice job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		system := provideSystem()
		s := provideStores()
		prices := providePriceService(s)
		mon := provideMonitor(ctx, s, system, prometheus.DefaultRegisterer)
		risks := provideRiskService(mon)

		runWorkers(ctx, system, prices, mon, risks)
	},
}

func provideWorkers(system *core.System, prices core.PriceService, mon core.DegradationMonitor, risks core.RiskService) []worker.Worker {
	oracleWorker, err := priceoracle.New(system.Location, cfg.Worker.PriceSpec, prices, provideFeedService(), mon, provideRegistry(), core.SystemClock)
	if err != nil {
		panic(err)
	}

	riskWorker, err := riskscan.New(system.Location, cfg.Worker.RiskSpec, risks, cfg.Worker.WatchList, cfg.Risk.MaxBatchSize)
	if err != nil {
		panic(err)
	}

	return []worker.Worker{
		oracleWorker,
		riskWorker,
	}
}

func runWorkers(ctx context.Context, system *core.System, prices core.PriceService, mon core.DegradationMonitor, risks core.RiskService) {
	log := logger.FromContext(ctx)

	wg := sync.WaitGroup{}
	for _, w := range provideWorkers(system, prices, mon, risks) {
		wg.Add(1)

		go func(worker worker.Worker) {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil {
				log.WithError(err).Errorln("worker stopped")
			}
		}(w)
	}

	wg.Wait()
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
