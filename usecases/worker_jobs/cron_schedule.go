package worker_jobs

import (
	"time"

	"github.com/adhocore/gronx"
	"github.com/cockroachdb/errors"
)

// CronSchedule lets river run a periodic job on a cron expression
type CronSchedule struct {
	expression string
	location   *time.Location
}

func NewCronSchedule(expression string, location *time.Location) (CronSchedule, error) {
	if !gronx.New().IsValid(expression) {
		return CronSchedule{}, errors.Newf("invalid cron expression %q", expression)
	}
	if location == nil {
		location = time.UTC
	}
	return CronSchedule{expression: expression, location: location}, nil
}

// Next returns the first tick strictly after current. An expression that never matches
// again yields the zero time, which river treats as "never".
func (s CronSchedule) Next(current time.Time) time.Time {
	next, err := gronx.NextTickAfter(s.expression, current.In(s.location), false)
	if err != nil {
		return time.Time{}
	}
	return next
}
