package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// DelayFunc decides how long the dummy model "thinks" for a request.
type DelayFunc func(req Request) time.Duration

// FixedDelay returns a DelayFunc that always waits d.
func FixedDelay(d time.Duration) DelayFunc {
	return func(Request) time.Duration { return d }
}

// Dummy is a local stand-in model. It never calls out and its output is a
// deterministic function of the request.
type Dummy struct {
	Delay DelayFunc
	// Fail, when set, makes matching requests return an error.
	Fail func(req Request) error
}

func (d *Dummy) Generate(ctx context.Context, req Request) (string, error) {
	if d.Delay != nil {
		if wait := d.Delay(req); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-t.C:
			}
		}
	}
	if d.Fail != nil {
		if err := d.Fail(req); err != nil {
			return "", err
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.System + "\x00" + req.User))
	return fmt.Sprintf("dummy_%s_output_%s_%s_%08x",
		req.Model, truncate(req.System, 10), truncate(req.User, 10), h.Sum32()), nil
}
