package xmlrpc

import (
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// DialTimeout bounds both the TCP connect and the full round trip of a
// client-initiated call (the node's 3s getPid poll is the main caller of
// this path; other Master calls reuse the same bound).
const DialTimeout = 3 * time.Second

// DefaultStreamerOptions apply to every method call and response this
// package emits. A program talking to a legacy Master that validates
// Content-Length before parsing sets FixedContentLength here once at
// startup; the default streams an accurate two-pass Content-Length.
var DefaultStreamerOptions = Options{}

// Call performs a single XMLRPC method call against uri (an "http://host:port"
// or "http://host:port/path" Master/Slave address), boxing args with
// FromNative and unboxing the single response value with Native. It opens a
// new connection per call; Master connections are never pooled.
func Call(uri, method string, args ...interface{}) (interface{}, error) {
	v, err := CallValue(uri, method, args...)
	if err != nil {
		return nil, err
	}
	return v.Native(), nil
}

// CallValue is Call without the Native() unboxing step, for callers that
// need to inspect Value.Class directly; Call is built on it.
func CallValue(uri, method string, args ...interface{}) (Value, error) {
	host, err := hostport(uri)
	if err != nil {
		return Value{}, err
	}
	params := make([]Value, len(args))
	for i, a := range args {
		pv, err := FromNative(a)
		if err != nil {
			return Value{}, err
		}
		params[i] = pv
	}

	conn, err := net.DialTimeout("tcp", host, DialTimeout)
	if err != nil {
		return Value{}, errors.Wrapf(ErrNoConn, "dial %s: %v", host, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(DialTimeout))

	s := NewStreamer(conn, DefaultStreamerOptions)
	if err := s.SendMethodCall(host, method, params); err != nil {
		return Value{}, err
	}
	p := NewParser(conn)
	resp, err := p.ParseResponse()
	if err != nil {
		return Value{}, err
	}
	if resp.Code != 1 {
		return Value{}, errors.Wrapf(ErrBadConn, "%s: code %d: %s", method, resp.Code, resp.StatusMessage)
	}
	return resp.Value, nil
}

// hostport extracts the "host:port" dial target from a ROS XMLRPC URI,
// defaulting to port 80 if none is given.
func hostport(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrapf(ErrBadParam, "invalid uri %q: %v", uri, err)
	}
	host := u.Host
	if host == "" {
		return "", errors.Wrapf(ErrBadParam, "invalid uri %q: no host", uri)
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "80")
	}
	return host, nil
}

// --- Master API wrappers ----------------------------------------------------
//
// Each wrapper mirrors one Master XMLRPC method this node calls as a client.
// They all return the XMLRPC envelope's boxed third element already
// unwrapped to a native Go value; callers that need the boxed Value use
// CallValue directly. Neither exposes the code and status: a code other
// than 1 comes back as an ErrBadConn error carrying the status message.

func RegisterService(masterURI, callerID, service, serviceAPI, callerAPI string) (interface{}, error) {
	return Call(masterURI, "registerService", callerID, service, serviceAPI, callerAPI)
}

func UnregisterService(masterURI, callerID, service, serviceAPI string) (interface{}, error) {
	return Call(masterURI, "unregisterService", callerID, service, serviceAPI)
}

func RegisterSubscriber(masterURI, callerID, topic, topicType, callerAPI string) (interface{}, error) {
	return Call(masterURI, "registerSubscriber", callerID, topic, topicType, callerAPI)
}

func UnregisterSubscriber(masterURI, callerID, topic, callerAPI string) (interface{}, error) {
	return Call(masterURI, "unregisterSubscriber", callerID, topic, callerAPI)
}

func RegisterPublisher(masterURI, callerID, topic, topicType, callerAPI string) (interface{}, error) {
	return Call(masterURI, "registerPublisher", callerID, topic, topicType, callerAPI)
}

func UnregisterPublisher(masterURI, callerID, topic, callerAPI string) (interface{}, error) {
	return Call(masterURI, "unregisterPublisher", callerID, topic, callerAPI)
}

func LookupNode(masterURI, callerID, nodeName string) (interface{}, error) {
	return Call(masterURI, "lookupNode", callerID, nodeName)
}

func GetPublishedTopics(masterURI, callerID, subgraph string) (interface{}, error) {
	return Call(masterURI, "getPublishedTopics", callerID, subgraph)
}

func GetTopicTypes(masterURI, callerID string) (interface{}, error) {
	return Call(masterURI, "getTopicTypes", callerID)
}

func GetSystemState(masterURI, callerID string) (interface{}, error) {
	return Call(masterURI, "getSystemState", callerID)
}

func GetURI(masterURI, callerID string) (interface{}, error) {
	return Call(masterURI, "getUri", callerID)
}

func LookupService(masterURI, callerID, service string) (interface{}, error) {
	return Call(masterURI, "lookupService", callerID, service)
}

func DeleteParam(masterURI, callerID, key string) (interface{}, error) {
	return Call(masterURI, "deleteParam", callerID, key)
}

func SetParam(masterURI, callerID, key string, value interface{}) (interface{}, error) {
	return Call(masterURI, "setParam", callerID, key, value)
}

func GetParam(masterURI, callerID, key string) (interface{}, error) {
	return Call(masterURI, "getParam", callerID, key)
}

func SearchParam(masterURI, callerID, key string) (interface{}, error) {
	return Call(masterURI, "searchParam", callerID, key)
}

func SubscribeParam(masterURI, callerID, callerAPI, key string) (interface{}, error) {
	return Call(masterURI, "subscribeParam", callerID, callerAPI, key)
}

func UnsubscribeParam(masterURI, callerID, callerAPI, key string) (interface{}, error) {
	return Call(masterURI, "unsubscribeParam", callerID, callerAPI, key)
}

func HasParam(masterURI, callerID, key string) (interface{}, error) {
	return Call(masterURI, "hasParam", callerID, key)
}

func GetParamNames(masterURI, callerID string) (interface{}, error) {
	return Call(masterURI, "getParamNames", callerID)
}

func GetPid(masterOrSlaveURI, callerID string) (interface{}, error) {
	return Call(masterOrSlaveURI, "getPid", callerID)
}

// RequestTopic calls a publisher Slave's requestTopic, used by the TCPROS
// client worker to resolve a subscription's endpoint before connecting.
func RequestTopic(slaveURI, callerID, topic string, protocols []interface{}) (interface{}, error) {
	return Call(slaveURI, "requestTopic", callerID, topic, protocols)
}
