package client

import (
	"context"
	"time"
)

// DefaultWatchInterval vale para interval <= 0
const DefaultWatchInterval = 5 * time.Second

// Watch chama fetch imediatamente e depois a cada interval, entregando
// resultado ou erro a fn. Bloqueia até ctx ser cancelado; nenhuma entrega
// acontece depois do cancelamento.
func Watch[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), fn func(T, error)) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	run := func() {
		v, err := fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(v, err)
	}

	run()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
