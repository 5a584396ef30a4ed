// Package slideshow provides the automatic photo cycling job for
// InkFrame. It runs a single goroutine that sleeps until the next due
// event with a 60-second max-sleep-cap to ride out NTP steps, DST
// transitions and system sleep, then invokes the registered callback.
//
// Two kinds of events exist: the interval tick that advances the
// slideshow, and an optional cron-scheduled maintenance refresh used to
// clear e-ink ghosting overnight. The runner holds no scheduling state of
// its own beyond the timers; which photo comes next is entirely the
// cycling engine's decision.
package slideshow
