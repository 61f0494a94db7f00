package worker

import (
	"context"
	"sync"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker runs until ctx is done
type Worker interface {
	Run(ctx context.Context) error
}

// IJob cron job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

// OnWork one round of a job
type OnWork func(ctx context.Context) error

// BaseJob cron driven job, a round is skipped while the previous one is running
type BaseJob struct {
	Name      string
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork

	mux sync.Mutex
	ctx context.Context
}

// Init setup the cron schedule of the job
func (job *BaseJob) Init(name, location, spec string, onWork OnWork) error {
	l, err := time.LoadLocation(location)
	if err != nil {
		return err
	}

	job.Name = name
	job.OnWork = onWork
	job.Cron = cron.New(cron.WithLocation(l))
	_, err = job.Cron.AddFunc(spec, job.Run)
	return err
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// Run one round, no-op if a round is in progress
func (job *BaseJob) Run() {
	job.mux.Lock()
	if job.IsRunning {
		job.mux.Unlock()
		return
	}
	job.IsRunning = true
	ctx := job.ctx
	job.mux.Unlock()

	defer func() {
		job.mux.Lock()
		job.IsRunning = false
		job.mux.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := job.OnWork(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("worker", job.Name).Errorln("work failed")
	}
}

// Serve run the job on its schedule until ctx is done
func (job *BaseJob) Serve(ctx context.Context) error {
	job.mux.Lock()
	job.ctx = ctx
	job.mux.Unlock()

	if err := job.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return job.Stop()
}
