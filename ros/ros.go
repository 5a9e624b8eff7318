// Package ros implements an embeddable ROS 1 client node: Master/Slave
// XMLRPC registration, TCPROS pub/sub and service transport, and the
// lifecycle state machine that drives them, following the same shape as
// upstream rosgo.
package ros

import "time"

// Node is the handle a program holds for the lifetime of its participation
// in a ROS graph: one per process, created with NewNode.
type Node interface {
	NewPublisher(topic string, msgType MessageType, opts ...PublisherOption) Publisher
	NewPublisherWithCallbacks(topic string, msgType MessageType, connectCallback, disconnectCallback func(SingleSubscriberPublisher), opts ...PublisherOption) Publisher
	NewSubscriber(topic string, msgType MessageType, callback interface{}) Subscriber
	NewServiceClient(service string, srvType ServiceType, options ...ServiceClientOption) ServiceClient
	NewServiceServer(service string, srvType ServiceType, callback interface{}, options ...ServiceServerOption) ServiceServer
	ProbeTopic(topic string, msgType MessageType) error
	ProbeService(service string, srvType ServiceType) error

	OK() bool
	SpinOnce()
	Spin()
	Shutdown()

	GetParam(name string) (interface{}, error)
	SetParam(name string, value interface{}) error
	HasParam(name string) (bool, error)
	SearchParam(name string) (string, error)
	DeleteParam(name string) error
	SubscribeParam(name string, callback func(interface{})) error
	UnsubscribeParam(name string) error

	Logger() Logger
	SetLogger(logger Logger)

	NonRosArgs() []string
	Name() string
}

// NodeOption customizes a Node before it registers with the Master.
type NodeOption func(n *defaultNode)

// NodeServiceClientOptions applies default options to every service client
// created by this node unless overridden per-call.
func NodeServiceClientOptions(opts ...ServiceClientOption) NodeOption {
	return func(n *defaultNode) { n.srvClientOpts = opts }
}

// NodeServiceServerOptions applies default options to every service server
// created by this node unless overridden per-call.
func NodeServiceServerOptions(opts ...ServiceServerOption) NodeOption {
	return func(n *defaultNode) { n.srvServerOpts = opts }
}

// NodeConfigStore overrides where node identity (node name, XMLRPC address
// and URI, Master URI) persists across restarts. Default is an on-disk gob file
// under ROS_HOME.
func NodeConfigStore(store ConfigStore) NodeOption {
	return func(n *defaultNode) { n.configStore = store }
}

// NewNode constructs and registers a node named name. args is the raw
// process argument list; __name:=, __ns:=, _param:=value and topic:=remap
// tokens are pulled out of it before the remainder is returned from
// NonRosArgs.
func NewNode(name string, args []string, opts ...NodeOption) (Node, error) {
	return newDefaultNode(name, args, opts...)
}

// Publisher publishes Messages on a topic to every currently-connected
// subscriber (and replays the last message to late joiners when latching
// is enabled).
type Publisher interface {
	Publish(msg Message)
	GetNumSubscribers() int
	Shutdown()
}

// SingleSubscriberPublisher addresses exactly one subscriber session; it is
// handed to the connect/disconnect callbacks passed to
// Node.NewPublisherWithCallbacks.
type SingleSubscriberPublisher interface {
	Publish(msg Message)
	GetSubscriberName() string
	GetTopic() string
}

// Subscriber tracks the set of publishers currently feeding a topic
// subscription and dispatches deserialized messages to the registered
// callbacks.
type Subscriber interface {
	GetNumPublishers() int
	Shutdown()
}

// MessageEvent is the optional second argument a subscriber callback may
// declare, carrying per-message metadata a bare message argument can't.
type MessageEvent struct {
	PublisherName    string
	ReceiptTime      time.Time
	ConnectionHeader map[string]string
}

// ServiceServer answers Service calls over TCPROS with a user-supplied
// handler function.
type ServiceServer interface {
	Shutdown()
}

// ServiceClient issues Service calls against a registered ServiceServer,
// resolving its TCPROS address through the Master before each call (once,
// for a persistent client that keeps its connection).
type ServiceClient interface {
	Call(srv Service) error
	Shutdown()
}
