package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Job removes anonymous kv scopes idle longer than maxIdle and expired
// customer sessions. The shared staff scope is never purged.
type Job struct {
	store    kvstore.Backend
	sessions SessionPurger
	maxIdle  time.Duration
	timeout  time.Duration
	now      func() time.Time
}

func NewJob(store kvstore.Backend, sessions SessionPurger, maxIdle time.Duration) *Job {
	return &Job{
		store:    store,
		sessions: sessions,
		maxIdle:  maxIdle,
		timeout:  5 * time.Minute,
		now:      time.Now,
	}
}

func (j *Job) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.maxIdle)

	var errs []error

	scopes, err := j.store.PurgeIdle(ctx, cutoff, kvstore.SharedScope)
	if err != nil {
		errs = append(errs, fmt.Errorf("retention: failed to purge idle scopes: %w", err))
	}

	var sessions int64
	if j.sessions != nil {
		sessions, err = j.sessions.PurgeExpired(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("retention: failed to purge expired sessions: %w", err))
		}
	}

	log.Info().
		Time("cutoff", cutoff).
		Int64("entries_removed", scopes).
		Int64("sessions_removed", sessions).
		Msg("retention: sweep finished")

	return errors.Join(errs...)
}

// Schedule registers the job on a new cron scheduler. The caller starts and
// stops it.
func Schedule(spec string, job *Job) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), job.timeout)
		defer cancel()

		if err := job.Run(ctx); err != nil {
			log.Error().Err(err).Msg("retention: sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("retention: invalid schedule %q: %w", spec, err)
	}

	return c, nil
}
