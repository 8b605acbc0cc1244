// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/mbolis/quick-forms/log"
	"github.com/robfig/cron/v3"
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// StartTokenCleanup purges expired refresh tokens on the given cron spec.
// Stop the returned cron to end the schedule.
func StartTokenCleanup(purger TokenPurger, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() { purgeTokens(purger) })
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func purgeTokens(purger TokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := purger.PurgeExpiredTokens(ctx)
	if err != nil {
		log.Errorf("scheduler.purge_tokens: %+v", err)
		return
	}
	if n > 0 {
		log.Infof("scheduler.purge_tokens: removed %d expired token(s)", n)
	}
}
