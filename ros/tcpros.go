package ros

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/url"
	"strings"
	"time"
)

// tcprosHostPort parses a "rosrpc://host:port" service URI (the form
// lookupService returns) into a dial-ready host/port pair.
func tcprosHostPort(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", ErrBadParam
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", "", ErrBadParam
	}
	return host, port, nil
}

// header is one TCPROS connection-header field. Both handshake directions
// and the error envelope are just an ordered list of these.
type header struct {
	Key   string
	Value string
}

// busConnection is one row of a getBusInfo reply: a single
// live TCPROS connection belonging to a publisher or subscriber.
type busConnection struct {
	Destination string
	Direction   string // "i" inbound, "o" outbound, "b" both
	Transport   string
	Topic       string
	Connected   bool
}

// maxMessageLen rejects a declared TCPROS frame size as out-of-sync rather
// than trying to allocate it; 256000000 is the same bound upstream rosgo
// applies when reading a frame size.
const maxMessageLen = 256000000

// dialTimeout bounds how long subscription, service-client and probe
// dialing waits before giving up.
const dialTimeout = 3 * time.Second

// handshakeTimeout is the socket deadline applied while exchanging the
// connection header on a freshly accepted or dialed TCPROS socket.
const handshakeTimeout = 10 * time.Second

func wrapTCPErr(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrEOF
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	return ErrParse
}

// countingReader tracks how many bytes a framed read has consumed, so a
// deadline-driven poll loop can tell an idle timeout (nothing read yet,
// safe to retry) from a stall mid-frame (stream out of sync, fatal).
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func readSize(r io.Reader) (uint32, error) {
	var sz uint32
	if err := binary.Read(r, binary.LittleEndian, &sz); err != nil {
		return 0, wrapTCPErr(err)
	}
	if sz >= maxMessageLen {
		return 0, ErrParse
	}
	return sz, nil
}

func readRawMessage(r io.Reader, size uint32) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapTCPErr(err)
	}
	return buf, nil
}

// readTCPRosMessage reads one length-prefixed frame: a message body, or (for
// the handshake) the field-record blob a header decodes from.
func readTCPRosMessage(ctx context.Context, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size, err := readSize(r)
	if err != nil {
		return nil, err
	}
	return readRawMessage(r, size)
}

// writeTCPRosMessage writes one length-prefixed frame.
func writeTCPRosMessage(ctx context.Context, w io.Writer, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return wrapTCPErr(err)
	}
	_, err := w.Write(payload)
	return wrapTCPErr(err)
}

// encodeHeaderFields serializes headers into the repeated
// uint32-fieldLen + "key=value" blob that a length prefix then wraps.
func encodeHeaderFields(headers []header) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		field := h.Key + "=" + h.Value
		binary.Write(&buf, binary.LittleEndian, uint32(len(field)))
		buf.WriteString(field)
	}
	return buf.Bytes()
}

// decodeHeaderFields parses a field-record blob back into headers.
func decodeHeaderFields(payload []byte) ([]header, error) {
	var headers []header
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		if r.Len() < 4 {
			return nil, ErrParse
		}
		var fieldLen uint32
		binary.Read(r, binary.LittleEndian, &fieldLen)
		if int(fieldLen) > r.Len() || int(fieldLen) < 0 {
			return nil, ErrParse
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(r, field); err != nil {
			return nil, wrapTCPErr(err)
		}
		idx := bytes.IndexByte(field, '=')
		if idx < 0 {
			return nil, ErrParse
		}
		headers = append(headers, header{Key: string(field[:idx]), Value: string(field[idx+1:])})
	}
	return headers, nil
}

// readConnectionHeader reads and decodes one handshake header off r.
func readConnectionHeader(ctx context.Context, r io.Reader) ([]header, error) {
	payload, err := readTCPRosMessage(ctx, r)
	if err != nil {
		return nil, err
	}
	return decodeHeaderFields(payload)
}

// writeConnectionHeader encodes and writes a handshake header to w.
func writeConnectionHeader(ctx context.Context, w io.Writer, headers []header) error {
	return writeTCPRosMessage(ctx, w, encodeHeaderFields(headers))
}

func headerValue(headers []header, key string) (string, bool) {
	for _, h := range headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

func requireFields(headers []header, keys ...string) error {
	for _, k := range keys {
		if _, ok := headerValue(headers, k); !ok {
			return ErrParse
		}
	}
	return nil
}

// withProbe appends the client-only probe=1 field: a capability-query
// connection whose server handler is not invoked after a successful
// handshake.
func withProbe(headers []header) []header {
	return append(append([]header{}, headers...), header{Key: "probe", Value: "1"})
}

// errorHeader builds the callerid-less error envelope:
// {error, type, md5sum}.
func errorHeader(message, typeName, md5sum string) []header {
	return []header{
		{Key: "error", Value: message},
		{Key: "type", Value: typeName},
		{Key: "md5sum", Value: md5sum},
	}
}

// clientTopicHeader builds the Client->Server topic handshake:
// {callerid, topic, md5sum, type, tcp_nodelay}.
func clientTopicHeader(callerID, topic, md5sum, typeName string, tcpNoDelay bool) []header {
	return []header{
		{Key: "callerid", Value: callerID},
		{Key: "topic", Value: topic},
		{Key: "md5sum", Value: md5sum},
		{Key: "type", Value: typeName},
		{Key: "tcp_nodelay", Value: boolField(tcpNoDelay)},
	}
}

// clientServiceHeader builds the Client->Server service handshake:
// {callerid, service, md5sum, request_type, response_type, type, persistent}.
func clientServiceHeader(callerID, service, md5sum, requestType, responseType, typeName string, persistent bool) []header {
	return []header{
		{Key: "callerid", Value: callerID},
		{Key: "service", Value: service},
		{Key: "md5sum", Value: md5sum},
		{Key: "request_type", Value: requestType},
		{Key: "response_type", Value: responseType},
		{Key: "type", Value: typeName},
		{Key: "persistent", Value: boolField(persistent)},
	}
}

// serverTopicHeader builds the Server->Client topic handshake:
// {callerid, md5sum, type, latching}.
func serverTopicHeader(callerID, md5sum, typeName string, latching bool) []header {
	return []header{
		{Key: "callerid", Value: callerID},
		{Key: "md5sum", Value: md5sum},
		{Key: "type", Value: typeName},
		{Key: "latching", Value: boolField(latching)},
	}
}

// serverServiceHeader builds the Server->Client service handshake:
// {callerid, md5sum, request_type, response_type, type}.
func serverServiceHeader(callerID, md5sum, requestType, responseType, typeName string) []header {
	return []header{
		{Key: "callerid", Value: callerID},
		{Key: "md5sum", Value: md5sum},
		{Key: "request_type", Value: requestType},
		{Key: "response_type", Value: responseType},
		{Key: "type", Value: typeName},
	}
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBoolField(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// matchTypeAndMD5 validates the receiving side's md5sum/type rule: exact
// byte-equal compare, with the service-side allowance for a missing type
// and the wildcard md5sum "*".
func matchTypeAndMD5(headers []header, wantType, wantMD5 string, isService bool) error {
	md5sum, ok := headerValue(headers, "md5sum")
	if !ok {
		return ErrParse
	}
	if md5sum != wantMD5 && !(isService && md5sum == "*") {
		return ErrBadParam
	}
	typeName, ok := headerValue(headers, "type")
	if !ok {
		if isService {
			return nil
		}
		return ErrParse
	}
	if typeName != wantType {
		return ErrBadParam
	}
	return nil
}
