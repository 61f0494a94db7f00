package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"safeprice/handler"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run safeprice api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		system := provideSystem()
		reg := prometheus.DefaultRegisterer

		s := provideStores()
		prices := providePriceService(s)
		mon := provideMonitor(ctx, s, system, reg)
		valuations := provideValuationService(prices, mon)
		risks := provideRiskService(mon)

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		svr := handler.New(system, cfg.Degradation.Policy(), prices, valuations, mon, risks, reg)

		{
			//hc
			mux.Mount("/hc", svr.HandleHealthCheck())
		}

		{
			//metrics
			mux.Mount("/metrics", promhttp.Handler())
		}

		{
			//restful api
			mux.Mount("/api", svr.HandleRestAPI())
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		if withWorker, _ := cmd.Flags().GetBool("worker"); withWorker {
			go runWorkers(ctx, system, prices, mon, risks)
		}

		logrus.Infoln("serve at", addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Bool("worker", false, "run the workers in the server process")
}
