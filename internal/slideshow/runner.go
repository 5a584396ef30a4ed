package slideshow

import (
	"context"
	"time"

	"github.com/adhocore/gronx"

	"github.com/inkframe/inkframe/pkg/logger"
)

const maxSleepCap = 60 * time.Second

// Status is a snapshot of the runner for the status API.
type Status struct {
	Running         bool      `json:"running"`
	IntervalMinutes int       `json:"interval_minutes"`
	NextRun         time.Time `json:"next_run,omitzero"`
}

// Runner owns the slideshow timing. All state lives in the run goroutine;
// the exported methods communicate over channels, so they are safe to
// call from any goroutine.
type Runner struct {
	ctx         context.Context
	onTick      func()
	onRefresh   func()
	refreshCron string
	log         logger.Logger

	startChan  chan time.Duration
	stopChan   chan struct{}
	statusChan chan chan Status
}

// New creates and starts a stopped Runner. onTick fires on every
// slideshow interval; onRefresh fires on the optional refreshCron
// schedule (empty disables it). The goroutine exits when ctx is
// cancelled.
func New(ctx context.Context, refreshCron string, onTick, onRefresh func(), log logger.Logger) *Runner {
	r := &Runner{
		ctx:         ctx,
		onTick:      onTick,
		onRefresh:   onRefresh,
		refreshCron: refreshCron,
		log:         log,
		startChan:   make(chan time.Duration, 4),
		stopChan:    make(chan struct{}, 4),
		statusChan:  make(chan chan Status),
	}
	go r.run()
	return r
}

// Start begins (or retimes) automatic cycling at the given interval.
func (r *Runner) Start(interval time.Duration) {
	select {
	case r.startChan <- interval:
	case <-r.ctx.Done():
	}
}

// Stop halts automatic cycling. The maintenance refresh keeps running.
func (r *Runner) Stop() {
	select {
	case r.stopChan <- struct{}{}:
	case <-r.ctx.Done():
	}
}

// Status reports whether cycling is active, the interval, and the next
// tick time.
func (r *Runner) Status() Status {
	reply := make(chan Status, 1)
	select {
	case r.statusChan <- reply:
		return <-reply
	case <-r.ctx.Done():
		return Status{}
	}
}

// nextCronOccurrence returns the next time the cron expression fires
// strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

func (r *Runner) run() {
	var (
		interval    time.Duration
		nextTick    time.Time
		nextRefresh time.Time
		timer       *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	if r.refreshCron != "" {
		next, err := nextCronOccurrence(r.refreshCron, time.Now())
		if err != nil {
			r.log.Warning("invalid refresh schedule %q, maintenance refresh disabled: %v", r.refreshCron, err)
		} else {
			nextRefresh = next
		}
	}

	earliest := func() time.Time {
		switch {
		case nextTick.IsZero():
			return nextRefresh
		case nextRefresh.IsZero():
			return nextTick
		case nextRefresh.Before(nextTick):
			return nextRefresh
		default:
			return nextTick
		}
	}

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		next := earliest()
		if next.IsZero() {
			// Nothing scheduled; block on channels only.
			return nil
		}
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-r.ctx.Done():
			return

		case d := <-r.startChan:
			interval = d
			nextTick = time.Now().Add(d)
			timerCh = resetTimer()

		case <-r.stopChan:
			interval = 0
			nextTick = time.Time{}
			timerCh = resetTimer()

		case reply := <-r.statusChan:
			reply <- Status{
				Running:         interval > 0,
				IntervalMinutes: int(interval / time.Minute),
				NextRun:         nextTick,
			}

		case <-timerCh:
			now := time.Now()
			if !nextTick.IsZero() && !nextTick.After(now) {
				r.onTick()
				nextTick = time.Now().Add(interval)
			}
			if !nextRefresh.IsZero() && !nextRefresh.After(now) {
				r.onRefresh()
				next, err := nextCronOccurrence(r.refreshCron, time.Now())
				if err != nil {
					nextRefresh = time.Time{}
				} else {
					nextRefresh = next
				}
			}
			timerCh = resetTimer()
		}
	}
}
