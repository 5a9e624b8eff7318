package ros

import (
	"context"
	"net"
	"strconv"

	"github.com/fetchrobotics/urosgo/xmlrpc"
)

// ProbeTopic opens a TCPROS connection to one of topic's current
// publishers with probe=1 set, completes the handshake, and reports
// whether msgType is wire-compatible, without ever invoking a message
// handler or creating a lasting subscription.
func (node *defaultNode) ProbeTopic(topic string, msgType MessageType) error {
	name := node.resolver.remap(topic)

	result, err := xmlrpc.RegisterSubscriber(node.masterURI, node.qualifiedName, name, msgType.Name(), node.xmlrpcURI)
	if err != nil {
		return err
	}
	defer xmlrpc.UnregisterSubscriber(node.masterURI, node.qualifiedName, name, node.xmlrpcURI)

	pubURIs, ok := asStringSlice(result)
	if !ok || len(pubURIs) == 0 {
		return ErrNoConn
	}

	protoResult, err := xmlrpc.RequestTopic(pubURIs[0], node.qualifiedName, name, []interface{}{[]interface{}{"TCPROS"}})
	if err != nil {
		return err
	}
	parts, ok := protoResult.([]interface{})
	if !ok || len(parts) < 3 {
		return ErrBadConn
	}
	host, _ := parts[1].(string)
	port := toInt(parts[2])
	if host == "" || port == 0 {
		return ErrNoConn
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), dialTimeout)
	if err != nil {
		return wrapTCPErr(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := writeConnectionHeader(ctx, conn, withProbe(clientTopicHeader(node.qualifiedName, name, msgType.MD5Sum(), msgType.Name(), false))); err != nil {
		return err
	}
	headers, err := readConnectionHeader(ctx, conn)
	if err != nil {
		return err
	}
	if _, ok := headerValue(headers, "error"); ok {
		return ErrBadConn
	}
	return matchTypeAndMD5(headers, msgType.Name(), msgType.MD5Sum(), false)
}

// ProbeService opens a TCPROS connection to service with probe=1 set and
// reports whether srvType is wire-compatible with the registered server,
// without invoking the server's handler.
func (node *defaultNode) ProbeService(service string, srvType ServiceType) error {
	name := node.resolver.remap(service)

	result, err := xmlrpc.LookupService(node.masterURI, node.qualifiedName, name)
	if err != nil {
		return err
	}
	uri, ok := result.(string)
	if !ok || uri == "" {
		return ErrNoConn
	}
	host, port, err := tcprosHostPort(uri)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), dialTimeout)
	if err != nil {
		return wrapTCPErr(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	reqType := srvType.RequestType()
	if err := writeConnectionHeader(ctx, conn, withProbe(clientServiceHeader(
		node.qualifiedName, name, srvType.MD5Sum(), reqType.Name(), srvType.ResponseType().Name(), srvType.Name(), false))); err != nil {
		return err
	}
	headers, err := readConnectionHeader(ctx, conn)
	if err != nil {
		return err
	}
	if _, ok := headerValue(headers, "error"); ok {
		return ErrBadConn
	}
	return matchTypeAndMD5(headers, srvType.Name(), srvType.MD5Sum(), true)
}

func asStringSlice(v interface{}) ([]string, bool) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
