// Package scheduler fires delivery jobs at fixed wall-clock times in each
// job's own timezone. Jobs share no state; a failing or slow job never
// delays or aborts a sibling.
package scheduler

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.herald/internal/model"
)

type Deliverer interface {
	Deliver(ctx context.Context, kind model.ContentKind, locale model.Locale) model.DeliveryResult
}

type Job struct {
	Name     string
	Hour     int
	Minute   int
	Location *time.Location
	Kind     model.ContentKind
	Locale   model.Locale
}

type Scheduler struct {
	deliverer Deliverer
	jobs      []Job
}

func New(deliverer Deliverer) *Scheduler {
	return &Scheduler{deliverer: deliverer}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Start runs every job loop and blocks until ctx is cancelled. A run already
// in progress completes naturally; only the wait for the next slot is
// interrupted.
func (s *Scheduler) Start(ctx context.Context) {
	log.Infof("scheduler starting with %d jobs", len(s.jobs))
	for _, job := range s.jobs {
		go s.run(ctx, job)
	}
	<-ctx.Done()
	log.Infof("scheduler stopping: %v", ctx.Err())
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	for {
		now := time.Now().In(job.Location)
		next := NextRun(now, job.Hour, job.Minute)
		log.Infof("[scheduler] %s next run at %s", job.Name, next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		s.fire(ctx, job)
	}
}

// fire isolates one delivery; a panicking job must not take down its
// siblings or the process.
func (s *Scheduler) fire(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[scheduler] %s panicked: %v", job.Name, r)
		}
	}()
	s.deliverer.Deliver(ctx, job.Kind, job.Locale)
}

// NextRun returns the next occurrence of hour:minute strictly after now, in
// now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	year, month, day := now.Date()
	next := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
