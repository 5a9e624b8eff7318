package ros

import (
	"context"
	"sync"
	"time"
)

// nodeState is the node's position in the UNINIT -> IDLE -> STARTUP ->
// RUNNING -> SHUTDOWN -> (STARTUP|IDLE) cycle.
type nodeState int32

const (
	stateUninit nodeState = iota
	stateIdle
	stateStartup
	stateRunning
	stateShutdown
)

// PollInterval is how often the lifecycle polls the Master's getPid while
// in STARTUP or RUNNING.
const PollInterval = 3 * time.Second

// lifecycleHooks are the ordered register/unregister callbacks the
// lifecycle invokes on STARTUP->RUNNING and on entering SHUTDOWN. Register
// hooks run publishers, subscribers, services, params in that order;
// unregister hooks run in the reverse order.
type lifecycleHooks struct {
	registerPublishers    func() error
	registerSubscribers   func() error
	registerServices      func() error
	registerParams        func() error
	unregisterPublishers  func()
	unregisterSubscribers func()
	unregisterServices    func()
	unregisterParams      func()
	userShutdown          func(msg string)
	cancelConnections     func()
	teardown              func()
}

// lifecycle drives a node's state machine: Master getPid polling, hook
// ordering on registration/teardown, and the cooperative cancellation
// signal given to every active TCPROS connection at shutdown.
type lifecycle struct {
	mu      sync.Mutex
	state   nodeState
	exit    bool
	exitMsg string
	hooks   lifecycleHooks
	logger  Logger
	stopped chan struct{}
	wake    chan struct{}
}

func newLifecycle(hooks lifecycleHooks, logger Logger) *lifecycle {
	return &lifecycle{state: stateIdle, hooks: hooks, logger: logger, stopped: make(chan struct{}), wake: make(chan struct{}, 1)}
}

func (l *lifecycle) getState() nodeState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *lifecycle) setState(s nodeState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// RequestShutdown sets the node's exit flag and message; the running loop
// observes it on its next poll and, after completing the shutdown sequence,
// settles in IDLE instead of cycling back to STARTUP.
func (l *lifecycle) RequestShutdown(msg string) {
	l.mu.Lock()
	l.exit = true
	l.exitMsg = msg
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *lifecycle) exitRequested() (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exit, l.exitMsg
}

// Run drives STARTUP->RUNNING->SHUTDOWN->(STARTUP|IDLE) until the node's
// exit flag is observed set at a SHUTDOWN transition, or parentCtx is
// cancelled (process teardown). pollMaster should call getPid against the
// Master and return a non-nil error on any failure, prompting the break
// out of RUNNING.
func (l *lifecycle) Run(parentCtx context.Context, pollMaster func(ctx context.Context) error) {
	defer close(l.stopped)
	for {
		select {
		case <-parentCtx.Done():
			return
		default:
		}

		ctx, cancel := context.WithCancel(parentCtx)
		l.setState(stateStartup)

		// STARTUP: poll until the Master answers, then run the register
		// hooks in order. An exit request here skips straight to SHUTDOWN.
		for {
			if exit, _ := l.exitRequested(); exit {
				break
			}
			if err := pollMaster(ctx); err != nil {
				l.logger.Debugf("lifecycle: master poll failed during startup: %v", err)
				select {
				case <-time.After(PollInterval):
				case <-l.wake:
				case <-parentCtx.Done():
					cancel()
					return
				}
				continue
			}
			l.runRegisterHooks()
			l.setState(stateRunning)
			break
		}

		// RUNNING: re-poll every PollInterval; the first failure or an exit
		// request breaks to SHUTDOWN.
		for l.getState() == stateRunning {
			select {
			case <-time.After(PollInterval):
			case <-l.wake:
			case <-parentCtx.Done():
				cancel()
				return
			}
			if exit, _ := l.exitRequested(); exit {
				break
			}
			if err := pollMaster(ctx); err != nil {
				l.logger.Warnf("lifecycle: master poll failed, breaking to shutdown: %v", err)
				break
			}
		}

		// SHUTDOWN: user hook, then cooperative cancellation of every live
		// TCPROS connection, then unregister hooks in reverse order.
		l.setState(stateShutdown)
		_, msg := l.exitRequested()
		l.hooks.userShutdown(msg)
		l.hooks.cancelConnections()
		cancel()
		l.runUnregisterHooks()
		if exit, _ := l.exitRequested(); exit {
			if l.hooks.teardown != nil {
				l.hooks.teardown()
			}
			l.setState(stateIdle)
			return
		}
		// Master re-discovery: cycle back to STARTUP with a fresh context.
	}
}

func (l *lifecycle) runRegisterHooks() {
	if err := l.hooks.registerPublishers(); err != nil {
		l.logger.Errorf("lifecycle: registerPublishers: %v", err)
	}
	if err := l.hooks.registerSubscribers(); err != nil {
		l.logger.Errorf("lifecycle: registerSubscribers: %v", err)
	}
	if err := l.hooks.registerServices(); err != nil {
		l.logger.Errorf("lifecycle: registerServices: %v", err)
	}
	if err := l.hooks.registerParams(); err != nil {
		l.logger.Errorf("lifecycle: registerParams: %v", err)
	}
}

// runUnregisterHooks runs in the reverse of register order. Failures (e.g.
// Master unreachable) are logged and ignored: the node still tears down
// its local state.
func (l *lifecycle) runUnregisterHooks() {
	l.hooks.unregisterParams()
	l.hooks.unregisterServices()
	l.hooks.unregisterSubscribers()
	l.hooks.unregisterPublishers()
}
