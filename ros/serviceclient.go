package ros

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/fetchrobotics/urosgo/xmlrpc"
	"github.com/pkg/errors"
)

// defaultServiceTCPTimeout is the socket deadline of one Call's exchange:
// set once before the request is written, it covers writing the request
// and reading the status byte and response together. The connection-header
// exchange uses handshakeTimeout instead.
const defaultServiceTCPTimeout = 10 * time.Second

// ServiceClientOption customizes a ServiceClient created by NewServiceClient.
type ServiceClientOption func(c *defaultServiceClient)

// ServiceClientTCPTimeout overrides the per-call request/response timeout.
func ServiceClientTCPTimeout(t time.Duration) ServiceClientOption {
	return func(c *defaultServiceClient) { c.tcpTimeout = t }
}

// ServiceClientPersistent keeps the TCPROS connection open across calls
// instead of dialing fresh each time.
func ServiceClientPersistent() ServiceClientOption {
	return func(c *defaultServiceClient) { c.persistent = true }
}

// defaultServiceClient resolves a service's TCPROS endpoint through the
// Master and dials it afresh on every Call; with ServiceClientPersistent it
// does so only until it holds a connection, which later calls reuse.
type defaultServiceClient struct {
	logger     Logger
	nodeID     string
	masterURI  string
	service    string
	srvType    ServiceType
	tcpTimeout time.Duration
	persistent bool

	mu   sync.Mutex
	conn net.Conn
}

func newDefaultServiceClient(logger Logger, nodeID, masterURI, service string, srvType ServiceType, opts ...ServiceClientOption) *defaultServiceClient {
	c := &defaultServiceClient{
		logger:     logger,
		nodeID:     nodeID,
		masterURI:  masterURI,
		service:    service,
		srvType:    srvType,
		tcpTimeout: defaultServiceTCPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultServiceClient) getConn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.persistent && c.conn != nil {
		return c.conn, nil
	}

	result, err := xmlrpc.LookupService(c.masterURI, c.nodeID, c.service)
	if err != nil {
		return nil, err
	}
	uri, ok := result.(string)
	if !ok || uri == "" {
		return nil, ErrNoConn
	}
	host, port, err := tcprosHostPort(uri)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), dialTimeout)
	if err != nil {
		return nil, wrapTCPErr(err)
	}
	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), c.tcpTimeout)
	defer cancel()
	reqType := c.srvType.RequestType()
	if err := writeConnectionHeader(ctx, conn, clientServiceHeader(
		c.nodeID, c.service, c.srvType.MD5Sum(),
		reqType.Name(), c.srvType.ResponseType().Name(), c.srvType.Name(), c.persistent)); err != nil {
		conn.Close()
		return nil, err
	}
	headers, err := readConnectionHeader(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, ok := headerValue(headers, "error"); ok {
		conn.Close()
		return nil, ErrBadConn
	}
	if err := matchTypeAndMD5(headers, c.srvType.Name(), c.srvType.MD5Sum(), true); err != nil {
		conn.Close()
		return nil, err
	}

	if c.persistent {
		c.conn = conn
	}
	return conn, nil
}

// Call performs one request/response exchange, serializing srv.ReqMessage()
// and deserializing the response into srv.ResMessage().
func (c *defaultServiceClient) Call(srv Service) error {
	conn, err := c.getConn()
	if err != nil {
		return err
	}
	conn.SetDeadline(time.Now().Add(c.tcpTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), c.tcpTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := srv.ReqMessage().Serialize(&buf); err != nil {
		return err
	}
	if err := writeTCPRosMessage(ctx, conn, buf.Bytes()); err != nil {
		c.dropConn(conn)
		return err
	}

	// The server prefixes its response with a single status byte: 1 means
	// the body is the serialized response, 0 means it is an error string.
	status := make([]byte, 1)
	if _, err := io.ReadFull(conn, status); err != nil {
		c.dropConn(conn)
		return wrapTCPErr(err)
	}
	payload, err := readTCPRosMessage(ctx, conn)
	if err != nil {
		c.dropConn(conn)
		return err
	}
	if status[0] == 0 {
		if !c.persistent {
			conn.Close()
		}
		return errors.Wrapf(ErrBadConn, "service %s: %s", c.service, string(payload))
	}
	if err := srv.ResMessage().Deserialize(bytes.NewReader(payload)); err != nil {
		return err
	}
	if !c.persistent {
		conn.Close()
	}
	return nil
}

func (c *defaultServiceClient) dropConn(conn net.Conn) {
	conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *defaultServiceClient) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
