package simulation

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// ProgressFunc is a callback by which the runner lends progress details after every
// turn, while exercising some level of control over its cancellation to prevent blocking.
// ProgressFunc is synchronous/blocking and should be defined to complete quickly.
type ProgressFunc func(context.Context, TurnResult)

// Run is async: it ticks the scenario every tick until every unit left the world or
// the context is done. The returned channel closes when the run ends. The scenario
// must not be touched by the caller until then, except through the progress callback.
func Run(
	ctx context.Context,
	scenario *Scenario,
	tick time.Duration,
	progressFn ProgressFunc,
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		for range channerics.NewTicker(runCtx.Done(), tick) {
			result, ok := scenario.Tick()
			if !ok {
				return
			}
			progressFn(ctx, result)
			if scenario.Remaining() == 0 {
				return
			}
		}
	}()
	return done
}
