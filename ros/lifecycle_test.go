package ros

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testHooks() (lifecycleHooks, *int32) {
	var shutdownCalls int32
	hooks := lifecycleHooks{
		registerPublishers:    func() error { return nil },
		registerSubscribers:   func() error { return nil },
		registerServices:      func() error { return nil },
		registerParams:        func() error { return nil },
		unregisterPublishers:  func() {},
		unregisterSubscribers: func() {},
		unregisterServices:    func() {},
		unregisterParams:      func() {},
		userShutdown:          func(msg string) { atomic.AddInt32(&shutdownCalls, 1) },
		cancelConnections:     func() {},
	}
	return hooks, &shutdownCalls
}

func TestLifecycleRunsRegisterHooksThenExitsOnShutdown(t *testing.T) {
	var registered int32
	hooks, shutdownCalls := testHooks()
	hooks.registerPublishers = func() error { atomic.AddInt32(&registered, 1); return nil }

	l := newLifecycle(hooks, NewDefaultLogger())

	polls := int32(0)
	done := make(chan struct{})
	go func() {
		l.Run(context.Background(), func(ctx context.Context) error {
			n := atomic.AddInt32(&polls, 1)
			if n == 1 {
				l.RequestShutdown("test done")
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not stop after RequestShutdown")
	}

	assert.True(t, atomic.LoadInt32(&registered) >= 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(shutdownCalls))
	assert.Equal(t, stateIdle, l.getState())
}

func TestLifecycleStopsOnParentContextCancel(t *testing.T) {
	hooks, _ := testHooks()
	l := newLifecycle(hooks, NewDefaultLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not stop after parent context cancel")
	}
}

func TestLifecycleRegisterHooksRunInOrder(t *testing.T) {
	var order []string
	hooks := lifecycleHooks{
		registerPublishers:  func() error { order = append(order, "pub"); return nil },
		registerSubscribers: func() error { order = append(order, "sub"); return nil },
		registerServices:    func() error { order = append(order, "srv"); return nil },
		registerParams:      func() error { order = append(order, "param"); return nil },
	}
	l := newLifecycle(hooks, NewDefaultLogger())
	l.runRegisterHooks()
	assert.Equal(t, []string{"pub", "sub", "srv", "param"}, order)
}

func TestLifecycleUnregisterHooksRunInReverseOrder(t *testing.T) {
	var order []string
	hooks := lifecycleHooks{
		unregisterPublishers:  func() { order = append(order, "pub") },
		unregisterSubscribers: func() { order = append(order, "sub") },
		unregisterServices:    func() { order = append(order, "srv") },
		unregisterParams:      func() { order = append(order, "param") },
	}
	l := newLifecycle(hooks, NewDefaultLogger())
	l.runUnregisterHooks()
	assert.Equal(t, []string{"param", "srv", "sub", "pub"}, order)
}
