// Package timer provides time-based stream and operation sources:
// periodic ticks, one-shot delays, and cron-scheduled emissions.
//
// All sources are cold: each Observe starts its own clock, and
// disposing the observation stops it.
package timer

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/goflux/pkg/common/errors"
	"github.com/vnykmshr/goflux/pkg/reactive/operation"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Interval returns a cold stream that emits the current time every d,
// starting one period after observation. Each observer gets its own
// ticker; disposal stops it.
func Interval(d time.Duration) stream.Stream[time.Time] {
	return stream.New(func(next func(time.Time)) stream.Disposable {
		ticker := time.NewTicker(d)
		stop := make(chan struct{})
		go func() {
			for {
				select {
				case <-stop:
					return
				case t := <-ticker.C:
					next(t)
				}
			}
		}()
		return stream.NewDisposable(func() {
			ticker.Stop()
			close(stop)
		})
	})
}

// After returns an operation that emits the current time once d has
// elapsed, then succeeds. Cancelling the observation before the
// deadline stops the timer.
func After(d time.Duration) operation.Operation[time.Time] {
	return operation.New(func(s operation.Sink[time.Time]) stream.Disposable {
		t := time.AfterFunc(d, func() {
			s.Next(time.Now())
			s.Succeed()
		})
		return stream.NewDisposable(func() { t.Stop() })
	})
}

// cronParser accepts the six-field format with a seconds column.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Cron returns a cold stream that emits at every activation time of the
// cron expression. The expression uses the six-field format with a
// leading seconds column ("*/5 * * * * *" fires every five seconds).
func Cron(expr string) (stream.Stream[time.Time], error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return stream.Stream[time.Time]{}, fmt.Errorf("%w: cron expression %q: %v", gferrors.ErrInvalidConfiguration, expr, err)
	}

	return stream.New(func(next func(time.Time)) stream.Disposable {
		stop := make(chan struct{})
		go func() {
			timer := time.NewTimer(0)
			if !timer.Stop() {
				<-timer.C
			}
			for {
				now := time.Now()
				timer.Reset(schedule.Next(now).Sub(now))
				select {
				case <-stop:
					timer.Stop()
					return
				case t := <-timer.C:
					next(t)
				}
			}
		}()
		return stream.NewDisposable(func() { close(stop) })
	}), nil
}
