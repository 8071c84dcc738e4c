package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/jimezsa/leadscout/internal/models"
	"github.com/rs/zerolog"
)

var ErrWorkerStopped = errors.New("scrape worker stopped")

// Runner executes one job. *Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, job models.ScrapeJob, creds models.Credentials) ([]models.Lead, error)
}

type task struct {
	ctx   context.Context
	job   models.ScrapeJob
	creds models.Credentials
	done  chan outcome
}

type outcome struct {
	leads []models.Lead
	err   error
}

// Worker serializes jobs on one goroutine, so a browser session is never
// shared between jobs.
type Worker struct {
	runner Runner
	logger zerolog.Logger

	tasks   chan task
	quit    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewWorker(runner Runner, logger zerolog.Logger) *Worker {
	return &Worker{
		runner:  runner,
		logger:  logger,
		tasks:   make(chan task),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Later calls do nothing.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.loop()
	})
}

func (w *Worker) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.quit:
			return
		case t := <-w.tasks:
			// A job is never abandoned halfway, even when its caller gives up.
			leads, err := w.runner.Run(context.WithoutCancel(t.ctx), t.job, t.creds)
			t.done <- outcome{leads: leads, err: err}
		}
	}
}

// Submit queues job and waits for its result. If ctx ends first Submit
// returns ctx.Err(); an accepted job still runs to completion.
func (w *Worker) Submit(ctx context.Context, job models.ScrapeJob, creds models.Credentials) ([]models.Lead, error) {
	t := task{ctx: ctx, job: job, creds: creds, done: make(chan outcome, 1)}

	select {
	case w.tasks <- t:
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-t.done:
		return res.leads, res.err
	case <-ctx.Done():
		w.logger.Warn().Str("job_id", job.ID).Msg("caller stopped waiting, job continues")
		return nil, ctx.Err()
	}
}

// Stop ends the consumer after the running job, if any, finishes.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
	w.startOnce.Do(func() { close(w.stopped) })
	<-w.stopped
}
