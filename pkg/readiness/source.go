package readiness

import (
	"context"
	"time"

	"github.com/downfa11-org/pubsub-harness/util"
)

// Source is a condition a scenario step blocks on before advancing.
type Source interface {
	AwaitReady(ctx context.Context) error
	Describe() string
}

// Await blocks on src, bounded by timeout when it is positive.
func Await(ctx context.Context, src Source, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := src.AwaitReady(ctx)
	if err != nil {
		util.Debug("waiting for %s failed after %v: %v", src.Describe(), time.Since(start), err)
		return err
	}
	util.Debug("observed %s after %v", src.Describe(), time.Since(start))
	return nil
}
