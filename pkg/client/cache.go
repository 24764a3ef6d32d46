package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifica uma consulta em cache
type Key struct {
	Resource string
	ID       string
	Filters  string
}

func (k Key) String() string {
	return k.Resource + "|" + k.ID + "|" + k.Filters
}

type entry struct {
	value   any
	fetched time.Time
	tags    []string
}

// QueryCache guarda resultados de consultas por Key, marcados com as tags dos
// recursos de que dependem. Os valores são compartilhados entre chamadores e
// devem ser tratados como somente leitura.
type QueryCache struct {
	mu        sync.Mutex
	entries   map[string]entry
	gen       uint64 // muda a cada invalidação
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time

	// FetchTimeout limita a chamada compartilhada, que não segue o
	// cancelamento de nenhum chamador
	FetchTimeout time.Duration
}

const defaultFetchTimeout = 30 * time.Second

func NewQueryCache(staleTime time.Duration) *QueryCache {
	return &QueryCache{
		entries:      make(map[string]entry),
		staleTime:    staleTime,
		now:          time.Now,
		FetchTimeout: defaultFetchTimeout,
	}
}

// Fetch devolve o valor fresco em cache ou chama fn. Misses concorrentes da
// mesma chave compartilham uma única chamada; cada chamador para de esperar
// quando o próprio ctx termina, sem derrubar a chamada dos demais.
func (c *QueryCache) Fetch(ctx context.Context, key Key, tags []string, fn func(context.Context) (any, error)) (any, error) {
	k := key.String()
	if v, ok := c.fresh(k); ok {
		return v, nil
	}
	ch := c.group.DoChan(k, func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.FetchTimeout)
		defer cancel()
		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// resultado de antes de uma invalidação não entra no cache
		if gen == c.gen {
			c.entries[k] = entry{value: v, fetched: c.now(), tags: tags}
		}
		c.mu.Unlock()
		return v, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (c *QueryCache) fresh(k string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetched) >= c.staleTime {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

// Invalidate remove toda entrada marcada com alguma das tags e devolve quantas saíram
func (c *QueryCache) Invalidate(tags ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for k, e := range c.entries {
		for _, t := range tags {
			if slices.Contains(e.tags, t) {
				delete(c.entries, k)
				n++
				break
			}
		}
	}
	return n
}

// Forget remove uma única chave
func (c *QueryCache) Forget(key Key) {
	c.mu.Lock()
	delete(c.entries, key.String())
	c.mu.Unlock()
}

func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// fetchAs é Fetch com o tipo do resultado
func fetchAs[T any](ctx context.Context, c *QueryCache, key Key, tags []string, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, tags, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
