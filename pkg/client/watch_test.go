package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watchResult struct {
	n   int
	err error
}

func TestWatch_DeliversResultsAndErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		n := int(calls.Add(1))
		if n == 2 {
			return 0, errors.New("rpc down")
		}
		return n, nil
	}

	out := make(chan watchResult, 16)
	go Watch(ctx, 5*time.Millisecond, fetch, func(n int, err error) {
		select {
		case out <- watchResult{n, err}:
		default:
		}
	})

	var got []watchResult
	for len(got) < 3 {
		select {
		case r := <-out:
			got = append(got, r)
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not deliver")
		}
	}
	assert.Equal(t, 1, got[0].n)
	require.NoError(t, got[0].err)
	assert.EqualError(t, got[1].err, "rpc down")
	assert.Equal(t, 3, got[2].n)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var delivered atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Watch(ctx, 5*time.Millisecond, func(context.Context) (int, error) { return 1, nil }, func(int, error) {
			delivered.Add(1)
		})
	}()

	require.Eventually(t, func() bool { return delivered.Load() >= 2 }, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	n := delivered.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, delivered.Load())
}

func TestWatch_NonPositiveIntervalUsesDefault(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		ctx, cancel := context.WithCancel(context.Background())
		first := make(chan int, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			Watch(ctx, interval, func(context.Context) (int, error) { return 7, nil }, func(n int, _ error) {
				select {
				case first <- n:
				default:
				}
			})
		}()

		select {
		case n := <-first:
			assert.Equal(t, 7, n)
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not deliver the first result")
		}
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not stop")
		}
	}
}
