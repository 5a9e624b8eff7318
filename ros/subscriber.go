package ros

import (
	"bytes"
	"context"
	"net"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fetchrobotics/urosgo/xmlrpc"
)

// dispatchTimeout bounds how long dispatch waits to hand a decoded message
// off to the node's job queue before giving up on a slow consumer.
const dispatchTimeout = 3 * time.Second

// defaultSubscriber is the orchestrator for one subscribed topic: it tracks
// the Master's current publisher list, keeps one subscription goroutine
// running per live publisher, and fans decoded messages out to every
// registered callback.
type defaultSubscriber struct {
	topic   string
	msgType MessageType

	mu        sync.Mutex
	callbacks []interface{}
	pubList   []string
	cancel    map[string]context.CancelFunc

	pubListChan      chan []string
	msgChan          chan messageEvent
	disconnectedChan chan string
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once

	msgsRecv  int64
	bytesRecv int64
}

// stats reports the receive-side counters getBusStats surfaces: total
// messages and bytes received since this subscriber was created.
func (s *defaultSubscriber) stats() (msgs, bytes int64) {
	return atomic.LoadInt64(&s.msgsRecv), atomic.LoadInt64(&s.bytesRecv)
}

// connections reports one row per currently connected publisher, for
// getBusInfo.
func (s *defaultSubscriber) connections() []busConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := make([]busConnection, 0, len(s.cancel))
	for uri := range s.cancel {
		conns = append(conns, busConnection{Destination: uri, Direction: "i", Transport: "TCPROS", Topic: s.topic, Connected: true})
	}
	return conns
}

func newDefaultSubscriber(topic string, msgType MessageType, callback interface{}) *defaultSubscriber {
	return &defaultSubscriber{
		topic:            topic,
		msgType:          msgType,
		callbacks:        []interface{}{callback},
		cancel:           make(map[string]context.CancelFunc),
		pubListChan:      make(chan []string, 1),
		msgChan:          make(chan messageEvent, 10),
		disconnectedChan: make(chan string),
		shutdownChan:     make(chan struct{}),
	}
}

// setDifference returns the elements of lhs not present in rhs.
func setDifference(lhs, rhs []string) []string {
	rhsSet := make(map[string]struct{}, len(rhs))
	for _, v := range rhs {
		rhsSet[v] = struct{}{}
	}
	var diff []string
	for _, v := range lhs {
		if _, ok := rhsSet[v]; !ok {
			diff = append(diff, v)
		}
	}
	return diff
}

func (s *defaultSubscriber) start(wg *sync.WaitGroup, nodeID, nodeAPIURI, masterURI string, jobChan chan func(), logger Logger, onShutdown func()) {
	wg.Add(1)
	go s.run(wg, nodeID, nodeAPIURI, masterURI, jobChan, logger, onShutdown)
}

func (s *defaultSubscriber) run(wg *sync.WaitGroup, nodeID, nodeAPIURI, masterURI string, jobChan chan func(), logger Logger, onShutdown func()) {
	defer wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case pubList := <-s.pubListChan:
			s.mu.Lock()
			dead := setDifference(s.pubList, pubList)
			fresh := setDifference(pubList, s.pubList)
			s.pubList = pubList
			s.mu.Unlock()

			for _, uri := range dead {
				s.disconnect(uri)
			}
			for _, uri := range fresh {
				s.connect(ctx, uri, nodeID, nodeAPIURI, masterURI, logger)
			}

		case uri := <-s.disconnectedChan:
			s.disconnect(uri)

		case me := <-s.msgChan:
			s.dispatch(me, jobChan, logger)

		case <-s.shutdownChan:
			onShutdown()
			return
		}
	}
}

func (s *defaultSubscriber) connect(ctx context.Context, pubURI, nodeID, nodeAPIURI, masterURI string, logger Logger) {
	subCtx, subCancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel[pubURI] = subCancel
	s.mu.Unlock()

	go func() {
		defer func() {
			select {
			case s.disconnectedChan <- pubURI:
			case <-subCtx.Done():
			}
		}()

		protocols := []interface{}{[]interface{}{"TCPROS"}}
		result, err := xmlrpc.RequestTopic(pubURI, nodeID, s.topic, protocols)
		if err != nil {
			logger.Warnf("subscriber %s: requestTopic(%s) failed: %v", s.topic, pubURI, err)
			return
		}
		parts, ok := result.([]interface{})
		if !ok || len(parts) < 3 {
			logger.Warnf("subscriber %s: requestTopic(%s) returned malformed protocol params", s.topic, pubURI)
			return
		}
		host, _ := parts[1].(string)
		port := toInt(parts[2])
		if host == "" || port == 0 {
			logger.Warnf("subscriber %s: publisher %s did not offer TCPROS", s.topic, pubURI)
			return
		}

		sub := newSubscription(net.JoinHostPort(host, strconv.Itoa(port)), s.topic, nodeID, s.msgType, s.msgChan, logger)
		sub.run(subCtx)
	}()
}

// cancelSessions drops every live publisher connection without shutting the
// subscriber down: the next pubListChan update (the register hooks resend it
// after Master re-discovery) reconnects from a clean slate.
func (s *defaultSubscriber) cancelSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, cancel := range s.cancel {
		cancel()
		delete(s.cancel, uri)
	}
	s.pubList = nil
}

func (s *defaultSubscriber) disconnect(pubURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancel[pubURI]; ok {
		cancel()
		delete(s.cancel, pubURI)
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

func (s *defaultSubscriber) dispatch(me messageEvent, jobChan chan func(), logger Logger) {
	s.mu.Lock()
	callbacks := append([]interface{}{}, s.callbacks...)
	s.mu.Unlock()

	atomic.AddInt64(&s.msgsRecv, 1)
	atomic.AddInt64(&s.bytesRecv, int64(len(me.bytes)))

	for _, cb := range callbacks {
		cb := cb
		msg := s.msgType.NewMessage()
		if err := msg.Deserialize(bytes.NewReader(me.bytes)); err != nil {
			logger.Errorf("subscriber %s: deserialize: %v", s.topic, err)
			return
		}
		job := func() {
			fn := reflect.ValueOf(cb)
			switch fn.Type().NumIn() {
			case 0:
				fn.Call(nil)
			case 1:
				fn.Call([]reflect.Value{reflect.ValueOf(msg)})
			default:
				fn.Call([]reflect.Value{reflect.ValueOf(msg), reflect.ValueOf(me.event)})
			}
		}
		select {
		case jobChan <- job:
		case <-time.After(dispatchTimeout):
			logger.Warnf("subscriber %s: job queue full, dropping message for a callback", s.topic)
		}
	}
}

func (s *defaultSubscriber) GetNumPublishers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pubList)
}

func (s *defaultSubscriber) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
}
