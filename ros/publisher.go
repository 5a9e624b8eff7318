package ros

import (
	"bytes"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// PublisherOption customizes a Publisher created by NewPublisher or
// NewPublisherWithCallbacks.
type PublisherOption func(*publisherConfig)

type publisherConfig struct {
	latching bool
}

// WithLatching enables latching: the publisher retains the most recently
// published message and replays it to each newly connected subscriber
// immediately after the handshake, before entering steady-state fan-out.
func WithLatching() PublisherOption {
	return func(c *publisherConfig) { c.latching = true }
}

// defaultPublisher fans a topic's messages out to every connected
// subscriber session. Each publisher binds its own random TCPROS port
// rather than sharing one port across the node.
type defaultPublisher struct {
	logger             Logger
	nodeID             string
	nodeAPIURI         string
	masterURI          string
	topic              string
	msgType            MessageType
	connectCallback    func(SingleSubscriberPublisher)
	disconnectCallback func(SingleSubscriberPublisher)

	msgChan      chan Message
	shutdownChan chan struct{}
	shutdownOnce sync.Once

	// bindRef/releaseRef tie each streaming session to the owning node's
	// published-topic descriptor refcount; nil when the publisher runs
	// standalone (tests).
	bindRef    func() bool
	releaseRef func()
	// onShutdown runs once after the fan-out loop drains, letting the node
	// unlink and unregister the topic.
	onShutdown func()

	mu       sync.Mutex
	sessions map[*publisherSession]struct{}

	latching bool
	lastMu   sync.Mutex
	lastMsg  Message

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc

	msgsSent  int64
	bytesSent int64
}

// stats reports the publish-side counters getBusStats surfaces: total
// messages and bytes sent since this publisher was created.
func (p *defaultPublisher) stats() (msgs, bytes int64) {
	return atomic.LoadInt64(&p.msgsSent), atomic.LoadInt64(&p.bytesSent)
}

// connections reports one row per connected subscriber session, for
// getBusInfo.
func (p *defaultPublisher) connections() []busConnection {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns := make([]busConnection, 0, len(p.sessions))
	for s := range p.sessions {
		conns = append(conns, busConnection{Destination: s.callerID, Direction: "o", Transport: "TCPROS", Topic: p.topic, Connected: true})
	}
	return conns
}

func newDefaultPublisher(logger Logger, nodeID, nodeAPIURI, masterURI, topic string, msgType MessageType, latching bool, connectCallback, disconnectCallback func(SingleSubscriberPublisher)) (*defaultPublisher, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &defaultPublisher{
		logger:             logger,
		nodeID:             nodeID,
		nodeAPIURI:         nodeAPIURI,
		masterURI:          masterURI,
		topic:              topic,
		msgType:            msgType,
		connectCallback:    connectCallback,
		disconnectCallback: disconnectCallback,
		msgChan:            make(chan Message, 10),
		shutdownChan:       make(chan struct{}),
		sessions:           make(map[*publisherSession]struct{}),
		latching:           latching,
		listener:           ln,
		ctx:                ctx,
		cancel:             cancel,
	}, nil
}

func (p *defaultPublisher) hostAndPort() (string, string) {
	host, port, _ := net.SplitHostPort(p.listener.Addr().String())
	return host, port
}

// start runs the fan-out loop until Shutdown. The caller must have done
// wg.Add(1) before spawning this goroutine.
func (p *defaultPublisher) start(wg *sync.WaitGroup) {
	defer wg.Done()

	var listenerWG sync.WaitGroup
	listenerWG.Add(1)
	go p.acceptLoop(&listenerWG)

	for {
		select {
		case msg := <-p.msgChan:
			p.lastMu.Lock()
			p.lastMsg = msg
			p.lastMu.Unlock()
			p.mu.Lock()
			for s := range p.sessions {
				select {
				case s.msgChan <- msg:
				default:
					p.logger.Warnf("publisher %s: session to %s is backed up, dropping message", p.topic, s.callerID)
				}
			}
			p.mu.Unlock()
		case <-p.shutdownChan:
			p.cancel()
			p.listener.Close()
			p.cancelSessions()
			listenerWG.Wait()
			if p.onShutdown != nil {
				p.onShutdown()
			}
			return
		}
	}
}

func (p *defaultPublisher) acceptLoop(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		go p.handleSession(conn)
	}
}

func (p *defaultPublisher) handleSession(conn net.Conn) {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	headers, err := readConnectionHeader(p.ctx, conn)
	if err != nil {
		conn.Close()
		return
	}
	if err := requireFields(headers, "callerid", "topic"); err != nil {
		writeConnectionHeader(p.ctx, conn, errorHeader("missing required header field", p.msgType.Name(), p.msgType.MD5Sum()))
		conn.Close()
		return
	}
	topic, _ := headerValue(headers, "topic")
	if topic != p.topic {
		writeConnectionHeader(p.ctx, conn, errorHeader("wrong topic", p.msgType.Name(), p.msgType.MD5Sum()))
		conn.Close()
		return
	}
	if err := matchTypeAndMD5(headers, p.msgType.Name(), p.msgType.MD5Sum(), false); err != nil {
		writeConnectionHeader(p.ctx, conn, errorHeader("type/md5sum mismatch", p.msgType.Name(), p.msgType.MD5Sum()))
		conn.Close()
		return
	}
	callerID, _ := headerValue(headers, "callerid")
	if v, ok := headerValue(headers, "tcp_nodelay"); ok && parseBoolField(v) {
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
	}

	// Take the topic reference before committing to the session; the
	// handshake reply only goes out if the descriptor is still live.
	if p.bindRef != nil && !p.bindRef() {
		writeConnectionHeader(p.ctx, conn, errorHeader("topic unpublished", p.msgType.Name(), p.msgType.MD5Sum()))
		conn.Close()
		return
	}
	release := func() {
		if p.releaseRef != nil {
			p.releaseRef()
		}
	}

	if err := writeConnectionHeader(p.ctx, conn, serverTopicHeader(p.nodeID, p.msgType.MD5Sum(), p.msgType.Name(), p.latching)); err != nil {
		release()
		conn.Close()
		return
	}
	if v, ok := headerValue(headers, "probe"); ok && parseBoolField(v) {
		release()
		conn.Close()
		return
	}
	conn.SetDeadline(time.Time{})

	sess := &publisherSession{
		conn:     conn,
		callerID: callerID,
		topic:    p.topic,
		msgChan:  make(chan Message, 10),
		quitChan: make(chan struct{}),
		logger:   p.logger,
		pub:      p,
	}
	p.mu.Lock()
	p.sessions[sess] = struct{}{}
	p.mu.Unlock()

	if p.connectCallback != nil {
		go p.connectCallback(sess)
	}
	if p.latching {
		p.lastMu.Lock()
		last := p.lastMsg
		p.lastMu.Unlock()
		if last != nil {
			sess.msgChan <- last
		}
	}

	sess.run(p.ctx)

	p.mu.Lock()
	delete(p.sessions, sess)
	p.mu.Unlock()
	release()
	if p.disconnectCallback != nil {
		go p.disconnectCallback(sess)
	}
}

// cancelSessions issues the cooperative exit signal to every connected
// subscriber session without tearing the publisher itself down; the
// lifecycle's SHUTDOWN sweep uses this so registrations can survive a
// Master re-discovery cycle.
func (p *defaultPublisher) cancelSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for s := range p.sessions {
		s.stop()
	}
}

func (p *defaultPublisher) Publish(msg Message) {
	select {
	case p.msgChan <- msg:
	case <-p.shutdownChan:
	}
}

func (p *defaultPublisher) GetNumSubscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *defaultPublisher) Shutdown() {
	p.shutdownOnce.Do(func() { close(p.shutdownChan) })
}

// publisherSession is one connected subscriber.
type publisherSession struct {
	conn     net.Conn
	callerID string
	topic    string
	msgChan  chan Message
	quitChan chan struct{}
	quitOnce sync.Once
	logger   Logger
	pub      *defaultPublisher
}

// stop signals the session's cooperative exit; safe to call more than once.
func (s *publisherSession) stop() {
	s.quitOnce.Do(func() { close(s.quitChan) })
}

func (s *publisherSession) run(ctx context.Context) {
	defer s.conn.Close()
	for {
		select {
		case msg := <-s.msgChan:
			var buf bytes.Buffer
			if err := msg.Serialize(&buf); err != nil {
				s.logger.Errorf("publisher session %s: serialize: %v", s.callerID, err)
				continue
			}
			if err := writeTCPRosMessage(ctx, s.conn, buf.Bytes()); err != nil {
				return
			}
			atomic.AddInt64(&s.pub.msgsSent, 1)
			atomic.AddInt64(&s.pub.bytesSent, int64(buf.Len()))
		case <-s.quitChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *publisherSession) Publish(msg Message) {
	select {
	case s.msgChan <- msg:
	case <-s.quitChan:
	}
}

func (s *publisherSession) GetSubscriberName() string { return s.callerID }
func (s *publisherSession) GetTopic() string          { return s.topic }
