// Package reaper removes accounts whose email verification window has lapsed.
package reaper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mysocial-server/internal/interfaces"
)

// DefaultInterval is how often the reaper sweeps when no interval is configured.
const DefaultInterval = time.Hour

// Reaper periodically deletes users that never verified their email and whose
// verification token has expired. Cascading foreign keys remove any dependent
// rows along with the user.
type Reaper struct {
	pool     interfaces.PgxPoolIface
	interval time.Duration
	now      func() time.Time
}

func New(pool interfaces.PgxPoolIface) *Reaper {
	return NewWithClock(pool, DefaultInterval, time.Now)
}

// NewWithClock builds a reaper with an explicit sweep interval and clock.
func NewWithClock(pool interfaces.PgxPoolIface, interval time.Duration, now func() time.Time) *Reaper {
	return &Reaper{
		pool:     pool,
		interval: interval,
		now:      now,
	}
}

// Start runs the sweep loop until the context is cancelled. A failed sweep is
// logged and retried on the next tick.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Reaper stopped")
				return
			case <-ticker.C:
				removed, err := r.RunOnce(ctx)
				if err != nil {
					logrus.WithError(err).Error("Reaper sweep failed")
					continue
				}
				if removed > 0 {
					logrus.WithField("removed", removed).Info("Reaper removed expired unverified users")
				}
			}
		}
	}()
}

// RunOnce deletes every unverified user whose verification window has lapsed
// and returns how many were removed.
func (r *Reaper) RunOnce(ctx context.Context) (int64, error) {
	queryString := "DELETE FROM social_schema.users WHERE email_verified = FALSE AND verification_expires_at < $1"
	tag, err := r.pool.Exec(ctx, queryString, r.now())
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
