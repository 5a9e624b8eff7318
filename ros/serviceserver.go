package ros

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"
)

// ServiceServerOption customizes a ServiceServer created by NewServiceServer.
type ServiceServerOption func(s *defaultServiceServer)

// ServiceServerTCPTimeout overrides the per-operation TCP timeout.
func ServiceServerTCPTimeout(t time.Duration) ServiceServerOption {
	return func(s *defaultServiceServer) { s.tcpTimeout = t }
}

// defaultServiceServer listens on its own TCPROS port and answers calls
// with a user-supplied handler, one connection at a time per session but
// concurrently across sessions; a persistent client keeps its connection
// and reuses it for further calls instead of the client redialing.
type defaultServiceServer struct {
	logger     Logger
	nodeID     string
	service    string
	srvType    ServiceType
	handler    interface{}
	tcpTimeout time.Duration

	// bindRef/releaseRef tie each session to the owning node's
	// published-service descriptor refcount; nil when standalone (tests).
	bindRef    func() bool
	releaseRef func()
	// onShutdown runs once at the end of Shutdown, letting the node unlink
	// and unregister the service.
	onShutdown   func()
	shutdownOnce sync.Once

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

func newDefaultServiceServer(logger Logger, nodeID, service string, srvType ServiceType, handler interface{}, opts ...ServiceServerOption) (*defaultServiceServer, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &defaultServiceServer{
		logger:     logger,
		nodeID:     nodeID,
		service:    service,
		srvType:    srvType,
		handler:    handler,
		tcpTimeout: defaultServiceTCPTimeout,
		listener:   ln,
		ctx:        ctx,
		cancel:     cancel,
		conns:      make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

func (s *defaultServiceServer) hostAndPort() (string, string) {
	host, port, _ := net.SplitHostPort(s.listener.Addr().String())
	return host, port
}

func (s *defaultServiceServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.handleSession(conn)
	}
}

func (s *defaultServiceServer) handleSession(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
	}()

	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	headers, err := readConnectionHeader(s.ctx, conn)
	if err != nil {
		return
	}
	if err := requireFields(headers, "callerid", "service"); err != nil {
		writeConnectionHeader(s.ctx, conn, errorHeader("missing required header field", "", s.srvType.MD5Sum()))
		return
	}
	if name, _ := headerValue(headers, "service"); name != s.service {
		writeConnectionHeader(s.ctx, conn, errorHeader("wrong service", "", s.srvType.MD5Sum()))
		return
	}
	reqType := s.srvType.RequestType()
	if err := matchTypeAndMD5(headers, s.srvType.Name(), s.srvType.MD5Sum(), true); err != nil {
		writeConnectionHeader(s.ctx, conn, errorHeader("type/md5sum mismatch", s.srvType.Name(), s.srvType.MD5Sum()))
		return
	}
	persistent := false
	if v, ok := headerValue(headers, "persistent"); ok {
		persistent = parseBoolField(v)
	}

	// Reference taken before the worker commits to running; released on
	// every path out of this session.
	if s.bindRef != nil && !s.bindRef() {
		writeConnectionHeader(s.ctx, conn, errorHeader("service unregistered", s.srvType.Name(), s.srvType.MD5Sum()))
		return
	}
	defer func() {
		if s.releaseRef != nil {
			s.releaseRef()
		}
	}()

	if err := writeConnectionHeader(s.ctx, conn, serverServiceHeader(s.nodeID, s.srvType.MD5Sum(), reqType.Name(), s.srvType.ResponseType().Name(), s.srvType.Name())); err != nil {
		return
	}
	if v, ok := headerValue(headers, "probe"); ok && parseBoolField(v) {
		return
	}
	// No read deadline while waiting for the next request: a persistent
	// client may sit idle between calls, and Shutdown/cancelSessions close
	// the socket to unblock the wait.
	conn.SetDeadline(time.Time{})

	for {
		if err := s.serveOne(conn); err != nil {
			return
		}
		if !persistent {
			return
		}
	}
}

func (s *defaultServiceServer) serveOne(conn net.Conn) error {
	ctx := s.ctx

	payload, err := readTCPRosMessage(ctx, conn)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(s.tcpTimeout))

	srv := s.srvType.NewService()
	if err := srv.ReqMessage().Deserialize(bytes.NewReader(payload)); err != nil {
		return err
	}

	// The single status byte precedes the response body: 1 followed by the
	// serialized response, or 0 followed by a length-prefixed error string.
	if err := invokeServiceHandler(s.handler, srv); err != nil {
		s.logger.Errorf("service %s: handler error: %v", s.service, err)
		if _, werr := conn.Write([]byte{0}); werr != nil {
			return wrapTCPErr(werr)
		}
		// A failed call does not end the session; a persistent client may
		// retry on the same connection.
		return writeTCPRosMessage(ctx, conn, []byte(err.Error()))
	}

	var buf bytes.Buffer
	if err := srv.ResMessage().Serialize(&buf); err != nil {
		return err
	}
	if _, err := conn.Write([]byte{1}); err != nil {
		return wrapTCPErr(err)
	}
	return writeTCPRosMessage(ctx, conn, buf.Bytes())
}

// invokeServiceHandler calls a user handler shaped func(Service) error or
// func(Service) bool against srv.
func invokeServiceHandler(handler interface{}, srv Service) error {
	switch h := handler.(type) {
	case func(Service) error:
		return h(srv)
	case func(Service) bool:
		if !h(srv) {
			return ErrBadParam
		}
		return nil
	default:
		return ErrNotImplemented
	}
}

// cancelSessions drops every live client connection, unblocking their reads,
// without closing the listener; persistent clients redial afterwards.
func (s *defaultServiceServer) cancelSessions() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *defaultServiceServer) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.cancel()
		s.listener.Close()
		s.cancelSessions()
		s.wg.Wait()
		if s.onShutdown != nil {
			s.onShutdown()
		}
	})
}
