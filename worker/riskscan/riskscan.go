package riskscan

import (
	"context"

	"safeprice/core"
	"safeprice/worker"

	"github.com/fox-one/pkg/logger"
)

// Worker refresh the cached risk snapshots of the watch list
type Worker struct {
	worker.BaseJob
	risks     core.RiskService
	accounts  []string
	batchSize int
}

// New new risk scan worker
func New(location, spec string, risks core.RiskService, accounts []string, batchSize int) (*Worker, error) {
	if batchSize <= 0 {
		batchSize = core.DefaultMaxBatchSize
	}

	w := Worker{
		risks:     risks,
		accounts:  accounts,
		batchSize: batchSize,
	}

	if err := w.Init("riskscan", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return &w, nil
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.Serve(ctx)
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "riskscan")

	var liquidatable, degraded int
	for start := 0; start < len(w.accounts); start += w.batchSize {
		end := start + w.batchSize
		if end > len(w.accounts) {
			end = len(w.accounts)
		}

		snapshots, err := w.risks.GetUserRiskAssessments(ctx, w.accounts[start:end])
		if err != nil {
			log.WithError(err).Errorln("risks.GetUserRiskAssessments")
			return err
		}

		for _, s := range snapshots {
			if s.Degraded {
				degraded++
			}

			if s.Liquidatable {
				liquidatable++
				log.WithField("account", s.Account).
					WithField("health_factor", s.HealthFactor).
					WithField("level", s.WarningLevel).
					Warnln("account liquidatable")
			}
		}
	}

	log.WithField("liquidatable", liquidatable).WithField("degraded", degraded).Debugf("%d accounts scanned", len(w.accounts))
	return nil
}
