package lineup

import (
	"context"
	"fmt"
)

// Result is the outcome of the initial lineup load. Err is non-nil on failure,
// in which case Channels is nil.
type Result struct {
	Channels []Channel
	Err      error
}

// Start runs f exactly once on its own goroutine. The returned channel has
// room for one value: it yields a single Result and is then closed, so the
// goroutine finishes even if nobody ever receives.
func Start(ctx context.Context, f Fetcher) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- run(ctx, f)
	}()
	return out
}

func run(ctx context.Context, f Fetcher) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("lineup fetch panicked: %v", r)}
		}
	}()

	if f == nil {
		return Result{Err: fmt.Errorf("lineup fetcher not configured")}
	}
	channels, err := f.Fetch(ctx)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Channels: channels}
}
