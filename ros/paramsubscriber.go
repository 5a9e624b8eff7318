package ros

import "sync"

// paramSubscriber tracks this node's flat parameter subscriptions: a
// callback per subscribed key, invoked from the Slave's paramUpdate method
// when the Master reports a change.
type paramSubscriber struct {
	mu        sync.Mutex
	callbacks map[string]func(interface{})
}

func newParamSubscriber() *paramSubscriber {
	return &paramSubscriber{callbacks: make(map[string]func(interface{}))}
}

func (p *paramSubscriber) subscribe(key string, callback func(interface{})) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks[key] = callback
}

func (p *paramSubscriber) unsubscribe(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.callbacks, key)
}

// update dispatches a paramUpdate notification to the matching callback,
// reporting whether a subscription for key existed.
func (p *paramSubscriber) update(key string, value interface{}) bool {
	p.mu.Lock()
	cb, ok := p.callbacks[key]
	p.mu.Unlock()
	if !ok {
		return false
	}
	cb(value)
	return true
}

func (p *paramSubscriber) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.callbacks))
	for k := range p.callbacks {
		keys = append(keys, k)
	}
	return keys
}
