package ros

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fetchrobotics/urosgo/xmlrpc"
)

const (
	errorStatus   = -1
	failureStatus = 0
	successStatus = 1

	getBusStatsMethod      = "getBusStats"
	getBusInfoMethod       = "getBusInfo"
	getMasterURIMethod     = "getMasterUri"
	getPidMethod           = "getPid"
	getSubscriptionsMethod = "getSubscriptions"
	getPublicationsMethod  = "getPublications"
	paramUpdateMethod      = "paramUpdate"
	publisherUpdateMethod  = "publisherUpdate"
	requestTopicMethod     = "requestTopic"
	shutdownMethod         = "shutdown"
)

// defaultNode implements Node. One instance is created per process by
// NewNode; its exported methods are safe to call from any goroutine, but the
// Slave XMLRPC callbacks and the lifecycle's register/unregister hooks all
// run on their own goroutines rather than the caller's.
type defaultNode struct {
	name          string
	namespace     string
	qualifiedName string
	masterURI     string
	xmlrpcURI     string

	xmlrpcListener net.Listener
	xmlrpcHandler  *xmlrpc.Handler

	hostname string
	listenIP string
	homeDir  string

	resolver    *nameResolver
	nonRosArgs  []string
	configStore ConfigStore

	pubs *descriptorList
	subs *descriptorList
	srvs *descriptorList

	paramSub *paramSubscriber

	srvClientOpts []ServiceClientOption
	srvServerOpts []ServiceServerOption

	lifecycle *lifecycle

	jobChan       chan func()
	interruptChan chan os.Signal
	logger        Logger

	ok      bool
	okMutex sync.RWMutex

	waitGroup sync.WaitGroup
}

func newDefaultNode(name string, args []string, opts ...NodeOption) (*defaultNode, error) {
	namespace, nodeName, err := qualifyNodeName(name)
	if err != nil {
		return nil, err
	}

	remapping, params, specials, rest := processArguments(args)

	node := &defaultNode{
		name:       nodeName,
		namespace:  namespace,
		nonRosArgs: rest,
	}

	node.homeDir = filepath.Join(os.Getenv("HOME"), ".ros")
	if homeDir := os.Getenv("ROS_HOME"); homeDir != "" {
		node.homeDir = homeDir
	}
	if value, ok := specials["__name"]; ok {
		node.name = value
	}
	if ns := os.Getenv("ROS_NAMESPACE"); ns != "" {
		node.namespace = ns
	}
	if value, ok := specials["__ns"]; ok {
		node.namespace = value
	}

	var onlyLocalhost bool
	node.hostname, onlyLocalhost = determineHost()
	if value, ok := specials["__hostname"]; ok {
		node.hostname = value
		onlyLocalhost = value == "localhost"
	} else if value, ok := specials["__ip"]; ok {
		node.hostname = value
		onlyLocalhost = value == "::1" || strings.HasPrefix(value, "127.")
	}
	if onlyLocalhost {
		node.listenIP = "127.0.0.1"
	} else {
		node.listenIP = "0.0.0.0"
	}

	node.masterURI = os.Getenv("ROS_MASTER_URI")
	if value, ok := specials["__master"]; ok {
		node.masterURI = value
	}

	node.resolver = newNameResolver(node.namespace, node.name, remapping)
	node.qualifiedName = node.resolver.qualify(node.name)

	node.pubs = newDescriptorList()
	node.subs = newDescriptorList()
	node.srvs = newDescriptorList()
	node.paramSub = newParamSubscriber()
	node.interruptChan = make(chan os.Signal, 1)
	node.jobChan = make(chan func(), 100)
	node.ok = true
	node.logger = NewDefaultLogger()

	node.configStore = NewFileConfigStore(node.homeDir, node.qualifiedName)
	for _, opt := range opts {
		opt(node)
	}

	logger := node.logger
	if _, err := node.configStore.Load(); err != nil {
		logger.Debugf("config store load for %s: %v", node.qualifiedName, err)
	}

	logger.Debugf("master uri = %s", node.masterURI)
	for k, v := range params {
		value, err := loadParamFromString(v)
		if err != nil {
			value = v
		}
		if _, err := xmlrpc.SetParam(node.masterURI, node.qualifiedName, k, value); err != nil {
			return nil, err
		}
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:0", node.listenIP))
	if err != nil {
		logger.Errorf("newDefaultNode: listen: %v", err)
		return nil, err
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		return nil, err
	}
	node.xmlrpcURI = fmt.Sprintf("http://%s:%s", node.hostname, port)
	node.xmlrpcListener = listener
	logger.Debugf("slave api listening on %s", listener.Addr().String())

	node.xmlrpcHandler = xmlrpc.NewHandler(node.buildMethodTable())
	go node.xmlrpcHandler.Serve(node.xmlrpcListener)

	if err := node.configStore.Save(NodeConfig{
		NodeName:   node.qualifiedName,
		XMLRPCAddr: listener.Addr().String(),
		XMLRPCURI:  node.xmlrpcURI,
		MasterURI:  node.masterURI,
	}); err != nil {
		logger.Debugf("config store save for %s: %v", node.qualifiedName, err)
	}

	node.lifecycle = newLifecycle(lifecycleHooks{
		registerPublishers:    node.registerPublishers,
		registerSubscribers:   node.registerSubscribers,
		registerServices:      node.registerServices,
		registerParams:        node.registerParams,
		unregisterPublishers:  node.unregisterPublishers,
		unregisterSubscribers: node.unregisterSubscribers,
		unregisterServices:    node.unregisterServices,
		unregisterParams:      node.unregisterParams,
		userShutdown:          node.onLifecycleShutdown,
		cancelConnections:     node.cancelConnections,
		teardown:              node.teardownHandlers,
	}, logger)
	go node.lifecycle.Run(context.Background(), node.pollMaster)

	signal.Notify(node.interruptChan, os.Interrupt)
	go func() {
		<-node.interruptChan
		logger.Info("interrupted")
		node.lifecycle.RequestShutdown("SIGINT")
	}()

	logger.Debugf("started %s", node.qualifiedName)
	return node, nil
}

func (node *defaultNode) buildMethodTable() map[string]xmlrpc.Method {
	return map[string]xmlrpc.Method{
		getBusStatsMethod:      func(callerID string) (interface{}, error) { return node.getBusStats(callerID) },
		getBusInfoMethod:       func(callerID string) (interface{}, error) { return node.getBusInfo(callerID) },
		getMasterURIMethod:     func(callerID string) (interface{}, error) { return node.getMasterURI(callerID) },
		getPidMethod:           func(callerID string) (interface{}, error) { return node.getPid(callerID) },
		getSubscriptionsMethod: func(callerID string) (interface{}, error) { return node.getSubscriptions(callerID) },
		getPublicationsMethod:  func(callerID string) (interface{}, error) { return node.getPublications(callerID) },
		paramUpdateMethod: func(callerID, key string, value interface{}) (interface{}, error) {
			return node.paramUpdate(callerID, key, value)
		},
		publisherUpdateMethod: func(callerID, topic string, publishers []interface{}) (interface{}, error) {
			return node.publisherUpdate(callerID, topic, publishers)
		},
		requestTopicMethod: func(callerID, topic string, protocols []interface{}) (interface{}, error) {
			return node.requestTopic(callerID, topic, protocols)
		},
		shutdownMethod: func(callerID, msg string) (interface{}, error) {
			return node.shutdownRequested(callerID, msg)
		},
	}
}

func (node *defaultNode) pollMaster(ctx context.Context) error {
	_, err := xmlrpc.GetPid(node.masterURI, node.qualifiedName)
	return err
}

func (node *defaultNode) onLifecycleShutdown(msg string) {
	node.logger.Debugf("shutting down: %s", msg)
	node.okMutex.Lock()
	node.ok = false
	node.okMutex.Unlock()
}

// cancelConnections issues the cooperative cancellation signal to every
// active TCPROS connection (publisher, subscriber, and service side). It
// drops live sessions only — registrations survive, so a Master
// re-discovery cycle can re-register the same topics and services.
func (node *defaultNode) cancelConnections() {
	for _, d := range node.pubs.Snapshot() {
		d.Handler.(*defaultPublisher).cancelSessions()
	}
	for _, d := range node.subs.Snapshot() {
		d.Handler.(*defaultSubscriber).cancelSessions()
	}
	for _, d := range node.srvs.Snapshot() {
		d.Handler.(*defaultServiceServer).cancelSessions()
	}
}

// teardownHandlers fully shuts every publisher, subscriber, and service
// server down; the lifecycle runs it on its final transition to IDLE.
func (node *defaultNode) teardownHandlers() {
	for _, d := range node.pubs.Snapshot() {
		d.Handler.(*defaultPublisher).Shutdown()
	}
	for _, d := range node.subs.Snapshot() {
		d.Handler.(*defaultSubscriber).Shutdown()
	}
	for _, d := range node.srvs.Snapshot() {
		d.Handler.(*defaultServiceServer).Shutdown()
	}
}

// --- lifecycle register/unregister hooks -----------------------------------

func (node *defaultNode) registerPublishers() error {
	var firstErr error
	for _, d := range node.pubs.Snapshot() {
		pub := d.Handler.(*defaultPublisher)
		if _, err := xmlrpc.RegisterPublisher(node.masterURI, node.qualifiedName, d.Name, pub.msgType.Name(), node.xmlrpcURI); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (node *defaultNode) unregisterPublishers() {
	for _, d := range node.pubs.Snapshot() {
		xmlrpc.UnregisterPublisher(node.masterURI, node.qualifiedName, d.Name, node.xmlrpcURI)
	}
}

func (node *defaultNode) registerSubscribers() error {
	var firstErr error
	for _, d := range node.subs.Snapshot() {
		sub := d.Handler.(*defaultSubscriber)
		result, err := xmlrpc.RegisterSubscriber(node.masterURI, node.qualifiedName, d.Name, sub.msgType.Name(), node.xmlrpcURI)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if pubURIs, ok := asStringSlice(result); ok {
			sub.pubListChan <- pubURIs
		}
	}
	return firstErr
}

func (node *defaultNode) unregisterSubscribers() {
	for _, d := range node.subs.Snapshot() {
		xmlrpc.UnregisterSubscriber(node.masterURI, node.qualifiedName, d.Name, node.xmlrpcURI)
	}
}

func (node *defaultNode) registerServices() error {
	var firstErr error
	for _, d := range node.srvs.Snapshot() {
		srv := d.Handler.(*defaultServiceServer)
		if _, err := xmlrpc.RegisterService(node.masterURI, node.qualifiedName, d.Name, node.serviceAPI(srv), node.xmlrpcURI); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (node *defaultNode) unregisterServices() {
	for _, d := range node.srvs.Snapshot() {
		srv := d.Handler.(*defaultServiceServer)
		xmlrpc.UnregisterService(node.masterURI, node.qualifiedName, d.Name, node.serviceAPI(srv))
	}
}

// serviceAPI formats the rosrpc:// URI a service server registers under.
func (node *defaultNode) serviceAPI(srv *defaultServiceServer) string {
	host, port := srv.hostAndPort()
	return fmt.Sprintf("rosrpc://%s:%s", host, port)
}

func (node *defaultNode) registerParams() error {
	var firstErr error
	for _, key := range node.paramSub.keys() {
		if _, err := xmlrpc.SubscribeParam(node.masterURI, node.qualifiedName, node.xmlrpcURI, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (node *defaultNode) unregisterParams() {
	for _, key := range node.paramSub.keys() {
		xmlrpc.UnsubscribeParam(node.masterURI, node.qualifiedName, node.xmlrpcURI, key)
	}
}

// --- Slave XMLRPC methods ---------------------------------------------------

func (node *defaultNode) getBusStats(callerID string) (interface{}, error) {
	publish := []interface{}{}
	node.pubs.Each(func(d *descriptor) {
		pub := d.Handler.(*defaultPublisher)
		msgs, bytes := pub.stats()
		publish = append(publish, []interface{}{d.Name, bytes, msgs})
	})
	subscribe := []interface{}{}
	node.subs.Each(func(d *descriptor) {
		sub := d.Handler.(*defaultSubscriber)
		msgs, bytes := sub.stats()
		subscribe = append(subscribe, []interface{}{d.Name, bytes, msgs})
	})
	return buildRosAPIResult(successStatus, "success", []interface{}{publish, subscribe, []interface{}{}}), nil
}

func (node *defaultNode) getBusInfo(callerID string) (interface{}, error) {
	var id int
	rows := []interface{}{}
	appendConns := func(conns []busConnection) {
		for _, c := range conns {
			id++
			rows = append(rows, []interface{}{id, c.Destination, c.Direction, c.Transport, c.Topic, c.Connected})
		}
	}
	node.pubs.Each(func(d *descriptor) { appendConns(d.Handler.(*defaultPublisher).connections()) })
	node.subs.Each(func(d *descriptor) { appendConns(d.Handler.(*defaultSubscriber).connections()) })
	return buildRosAPIResult(successStatus, "success", rows), nil
}

func (node *defaultNode) getMasterURI(callerID string) (interface{}, error) {
	return buildRosAPIResult(successStatus, "success", node.masterURI), nil
}

func (node *defaultNode) shutdownRequested(callerID, msg string) (interface{}, error) {
	node.lifecycle.RequestShutdown(msg)
	return buildRosAPIResult(successStatus, "success", 0), nil
}

func (node *defaultNode) getPid(callerID string) (interface{}, error) {
	return buildRosAPIResult(successStatus, "success", os.Getpid()), nil
}

func (node *defaultNode) getSubscriptions(callerID string) (interface{}, error) {
	result := []interface{}{}
	node.subs.Each(func(d *descriptor) {
		sub := d.Handler.(*defaultSubscriber)
		result = append(result, []interface{}{d.Name, sub.msgType.Name()})
	})
	return buildRosAPIResult(successStatus, "success", result), nil
}

func (node *defaultNode) getPublications(callerID string) (interface{}, error) {
	result := []interface{}{}
	node.pubs.Each(func(d *descriptor) {
		pub := d.Handler.(*defaultPublisher)
		result = append(result, []interface{}{d.Name, pub.msgType.Name()})
	})
	return buildRosAPIResult(successStatus, "success", result), nil
}

func (node *defaultNode) paramUpdate(callerID, key string, value interface{}) (interface{}, error) {
	key = strings.TrimSuffix(key, "/")
	if node.paramSub.update(key, value) {
		return buildRosAPIResult(successStatus, "success", 0), nil
	}
	return buildRosAPIResult(failureStatus, "no such subscription", 0), nil
}

func (node *defaultNode) publisherUpdate(callerID, topic string, publishers []interface{}) (interface{}, error) {
	d, ok := node.subs.Lookup(topic)
	if !ok {
		node.logger.Debugf("publisherUpdate() called for unknown topic %s", topic)
		return buildRosAPIResult(failureStatus, "no such topic", 0), nil
	}
	sub := d.Handler.(*defaultSubscriber)
	pubURIs := make([]string, len(publishers))
	for i, uri := range publishers {
		pubURIs[i], _ = uri.(string)
	}
	sub.pubListChan <- pubURIs
	return buildRosAPIResult(successStatus, "success", 0), nil
}

func (node *defaultNode) requestTopic(callerID, topic string, protocols []interface{}) (interface{}, error) {
	d, ok := node.pubs.Lookup(topic)
	if !ok {
		node.logger.Debugf("requestTopic() called for unpublished topic %s", topic)
		return buildRosAPIResult(failureStatus, "no such topic", 0), nil
	}
	pub := d.Handler.(*defaultPublisher)

	for _, v := range protocols {
		params, ok := v.([]interface{})
		if !ok || len(params) == 0 {
			continue
		}
		name, _ := params[0].(string)
		if name != "TCPROS" {
			continue
		}
		host, portStr := pub.hostAndPort()
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		return buildRosAPIResult(successStatus, "success", []interface{}{"TCPROS", host, port}), nil
	}
	return buildRosAPIResult(failureStatus, "no protocols in common", 0), nil
}

// --- Node interface ----------------------------------------------------------

func (node *defaultNode) NewPublisher(topic string, msgType MessageType, opts ...PublisherOption) Publisher {
	return node.NewPublisherWithCallbacks(topic, msgType, nil, nil, opts...)
}

func (node *defaultNode) NewPublisherWithCallbacks(topic string, msgType MessageType, connectCallback, disconnectCallback func(SingleSubscriberPublisher), opts ...PublisherOption) Publisher {
	name := node.resolver.remap(topic)

	if d, ok := node.pubs.Lookup(name); ok {
		return d.Handler.(*defaultPublisher)
	}
	RegisterMessageType(msgType)

	cfg := publisherConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	pub, err := newDefaultPublisher(node.logger, node.qualifiedName, node.xmlrpcURI, node.masterURI, name, msgType, cfg.latching, connectCallback, disconnectCallback)
	if err != nil {
		node.logger.Errorf("NewPublisher(%s): %v", name, err)
		return nil
	}
	d := &descriptor{Name: name, MsgType: msgType, Handler: pub, Flags: descFlags{Latching: cfg.latching}}
	node.pubs.Insert(d)
	pub.bindRef = func() bool { return node.pubs.BindDesc(d) }
	pub.releaseRef = func() { node.pubs.Release(d) }
	pub.onShutdown = func() {
		if _, ok := node.pubs.Unpublish(name); ok {
			xmlrpc.UnregisterPublisher(node.masterURI, node.qualifiedName, name, node.xmlrpcURI)
		}
	}

	if _, err := xmlrpc.RegisterPublisher(node.masterURI, node.qualifiedName, name, msgType.Name(), node.xmlrpcURI); err != nil {
		node.logger.Errorf("registerPublisher(%s): %v", name, err)
	}
	node.waitGroup.Add(1)
	go pub.start(&node.waitGroup)
	return pub
}

func (node *defaultNode) NewSubscriber(topic string, msgType MessageType, callback interface{}) Subscriber {
	name := node.resolver.remap(topic)
	logger := node.logger

	if d, ok := node.subs.Lookup(name); ok {
		sub := d.Handler.(*defaultSubscriber)
		sub.mu.Lock()
		sub.callbacks = append(sub.callbacks, callback)
		sub.mu.Unlock()
		return sub
	}
	RegisterMessageType(msgType)

	result, err := xmlrpc.RegisterSubscriber(node.masterURI, node.qualifiedName, name, msgType.Name(), node.xmlrpcURI)
	if err != nil {
		logger.Errorf("registerSubscriber(%s): %v", name, err)
		return nil
	}
	publishers, _ := asStringSlice(result)

	sub := newDefaultSubscriber(name, msgType, callback)
	node.subs.Insert(&descriptor{Name: name, MsgType: msgType, Handler: sub})

	onShutdown := func() {
		if _, ok := node.subs.Unpublish(name); ok {
			xmlrpc.UnregisterSubscriber(node.masterURI, node.qualifiedName, name, node.xmlrpcURI)
		}
	}
	sub.start(&node.waitGroup, node.qualifiedName, node.xmlrpcURI, node.masterURI, node.jobChan, logger, onShutdown)
	sub.pubListChan <- publishers
	return sub
}

func (node *defaultNode) NewServiceClient(service string, srvType ServiceType, options ...ServiceClientOption) ServiceClient {
	name := node.resolver.remap(service)
	opts := append(append([]ServiceClientOption{}, node.srvClientOpts...), options...)
	return newDefaultServiceClient(node.logger, node.qualifiedName, node.masterURI, name, srvType, opts...)
}

func (node *defaultNode) NewServiceServer(service string, srvType ServiceType, callback interface{}, options ...ServiceServerOption) ServiceServer {
	name := node.resolver.remap(service)
	RegisterServiceType(srvType)

	// Replacing an existing server unregisters the old instance first; its
	// own shutdown hook sees the descriptor already unlinked and skips the
	// duplicate Master call.
	if d, ok := node.srvs.Unpublish(name); ok {
		old := d.Handler.(*defaultServiceServer)
		oldAPI := node.serviceAPI(old)
		old.Shutdown()
		xmlrpc.UnregisterService(node.masterURI, node.qualifiedName, name, oldAPI)
	}

	opts := append(append([]ServiceServerOption{}, node.srvServerOpts...), options...)
	srv, err := newDefaultServiceServer(node.logger, node.qualifiedName, name, srvType, callback, opts...)
	if err != nil {
		node.logger.Errorf("NewServiceServer(%s): %v", name, err)
		return nil
	}
	d := &descriptor{Name: name, MsgType: srvType, Handler: srv, Flags: descFlags{Service: true}}
	node.srvs.Insert(d)
	srv.bindRef = func() bool { return node.srvs.BindDesc(d) }
	srv.releaseRef = func() { node.srvs.Release(d) }
	srv.onShutdown = func() {
		if _, ok := node.srvs.Unpublish(name); ok {
			xmlrpc.UnregisterService(node.masterURI, node.qualifiedName, name, node.serviceAPI(srv))
		}
	}

	if _, err := xmlrpc.RegisterService(node.masterURI, node.qualifiedName, name, node.serviceAPI(srv), node.xmlrpcURI); err != nil {
		node.logger.Errorf("registerService(%s): %v", name, err)
	}
	return srv
}

func (node *defaultNode) OK() bool {
	node.okMutex.RLock()
	defer node.okMutex.RUnlock()
	return node.ok
}

func (node *defaultNode) SpinOnce() {
	select {
	case job := <-node.jobChan:
		job()
	case <-time.After(10 * time.Millisecond):
	}
}

func (node *defaultNode) Spin() {
	logger := node.logger
	for node.OK() {
		select {
		case job := <-node.jobChan:
			logger.Debug("executing job")
			job()
		case <-time.After(time.Second):
		}
	}
}

// Shutdown requests an orderly node teardown and blocks until it completes.
// The connection cancellation, unregister-hook sequencing, and handler
// teardown all happen inside the lifecycle's own SHUTDOWN path, so a
// Master-initiated shutdown() RPC tears down exactly the same way; this
// call just waits for that sequence to finish.
func (node *defaultNode) Shutdown() {
	node.logger.Debug("shutting node down")
	node.lifecycle.RequestShutdown("node shutdown")
	<-node.lifecycle.stopped

	node.waitGroup.Wait()
	node.xmlrpcListener.Close()
	node.logger.Debug("shutdown complete")
}

func (node *defaultNode) GetParam(key string) (interface{}, error) {
	name := node.resolver.remap(key)
	return xmlrpc.GetParam(node.masterURI, node.qualifiedName, name)
}

func (node *defaultNode) SetParam(key string, value interface{}) error {
	name := node.resolver.remap(key)
	_, err := xmlrpc.SetParam(node.masterURI, node.qualifiedName, name, value)
	return err
}

func (node *defaultNode) HasParam(key string) (bool, error) {
	name := node.resolver.remap(key)
	result, err := xmlrpc.HasParam(node.masterURI, node.qualifiedName, name)
	if err != nil {
		return false, err
	}
	has, _ := result.(bool)
	return has, nil
}

func (node *defaultNode) SearchParam(key string) (string, error) {
	result, err := xmlrpc.SearchParam(node.masterURI, node.qualifiedName, key)
	if err != nil {
		return "", err
	}
	found, _ := result.(string)
	return found, nil
}

func (node *defaultNode) DeleteParam(key string) error {
	name := node.resolver.remap(key)
	_, err := xmlrpc.DeleteParam(node.masterURI, node.qualifiedName, name)
	return err
}

func (node *defaultNode) SubscribeParam(name string, callback func(interface{})) error {
	key := node.resolver.remap(name)
	node.paramSub.subscribe(key, callback)
	_, err := xmlrpc.SubscribeParam(node.masterURI, node.qualifiedName, node.xmlrpcURI, key)
	return err
}

func (node *defaultNode) UnsubscribeParam(name string) error {
	key := node.resolver.remap(name)
	node.paramSub.unsubscribe(key)
	_, err := xmlrpc.UnsubscribeParam(node.masterURI, node.qualifiedName, node.xmlrpcURI, key)
	return err
}

func (node *defaultNode) Logger() Logger {
	return node.logger
}

func (node *defaultNode) SetLogger(logger Logger) {
	node.logger = logger
}

func (node *defaultNode) NonRosArgs() []string {
	return node.nonRosArgs
}

func (node *defaultNode) Name() string {
	return node.qualifiedName
}

func loadParamFromString(s string) (interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(s))
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// buildRosAPIResult assembles the [code, statusMessage, value] envelope
// every Slave and Master XMLRPC method returns.
func buildRosAPIResult(code int32, message string, value interface{}) []interface{} {
	return []interface{}{code, message, value}
}
