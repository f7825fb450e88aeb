package pipeline

import (
	"context"
	"time"
)

// Watch runs the pipeline immediately and then on every tick until the
// context is cancelled. Runs never overlap: the single loop is what
// guarantees exclusive access to the store. A failed run is logged and does
// not stop the loop.
func (p *Pipeline) Watch(ctx context.Context, interval time.Duration) error {
	p.logger.Info("starting watch loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := p.Run(ctx); err != nil {
		p.logger.Error("run failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("watch loop shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.Run(ctx); err != nil {
				p.logger.Error("run failed", "error", err)
			}
		}
	}
}
