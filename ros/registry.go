package ros

import "sync"

// typeRegistry is the append-only, linear-lookup table of message/service
// type descriptors a node registers once at startup. One instance backs
// messages, a second backs services.
type typeRegistry struct {
	mu    sync.RWMutex
	names []string
	descs []interface{}
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{}
}

// register inserts a descriptor under name, rejecting a duplicate name.
func (r *typeRegistry) register(name string, desc interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.names {
		if n == name {
			return ErrBadParam
		}
	}
	r.names = append(r.names, name)
	r.descs = append(r.descs, desc)
	return nil
}

func (r *typeRegistry) lookup(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, n := range r.names {
		if n == name {
			return r.descs[i], true
		}
	}
	return nil, false
}

// The process-wide type tables. Message and service types register here once
// at startup (typically from a package init or the program's
// register-static-types hook) and are looked up by exact name for the
// lifetime of the process.
var (
	messageTypes = newTypeRegistry()
	serviceTypes = newTypeRegistry()
)

// RegisterMessageType adds t to the global message-type table. A second
// registration under the same name returns ErrBadParam.
func RegisterMessageType(t MessageType) error {
	return messageTypes.register(t.Name(), t)
}

// LookupMessageType resolves a previously registered message type by name.
func LookupMessageType(name string) (MessageType, bool) {
	d, ok := messageTypes.lookup(name)
	if !ok {
		return nil, false
	}
	return d.(MessageType), true
}

// RegisterServiceType adds t to the global service-type table.
func RegisterServiceType(t ServiceType) error {
	return serviceTypes.register(t.Name(), t)
}

// LookupServiceType resolves a previously registered service type by name.
func LookupServiceType(name string) (ServiceType, bool) {
	d, ok := serviceTypes.lookup(name)
	if !ok {
		return nil, false
	}
	return d.(ServiceType), true
}

// descFlags mirrors the topic/service descriptor flag set: "service, probe,
// persistent, latching, noDelay, deleted".
type descFlags struct {
	Service    bool
	Probe      bool
	Persistent bool
	Latching   bool
	NoDelay    bool
	Deleted    bool
}

// descriptor is a live topic or service binding: a name, its message/service
// type, a handler, and a refcount protected by the owning list's mutex. A
// worker that resolves a descriptor through Bind holds a borrowed reference
// until it calls Release; the list frees the slot from its name index at
// unpublish time but the descriptor object itself survives until the last
// referencing worker releases it.
type descriptor struct {
	Name    string
	MsgType interface{} // MessageType or ServiceType
	Handler interface{} // the owning publisher, subscriber, or service server
	Flags   descFlags
	refcnt  int32
}

// descriptorList is one of the node's live topic/service lists: each
// guarded by its own mutex, ref-count mutation never happening outside it.
type descriptorList struct {
	mu      sync.Mutex
	byName  map[string]*descriptor
}

func newDescriptorList() *descriptorList {
	return &descriptorList{byName: make(map[string]*descriptor)}
}

// Insert adds d under d.Name, rejecting a name already present.
func (l *descriptorList) Insert(d *descriptor) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byName[d.Name]; ok {
		return ErrBadParam
	}
	l.byName[d.Name] = d
	return nil
}

// Bind resolves name to a live (non-deleted) descriptor and increments its
// refcount. New workers must not take a reference on a deleted descriptor,
// so Bind on an unpublished name fails exactly like a missing one.
func (l *descriptorList) Bind(name string) (*descriptor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.byName[name]
	if !ok || d.Flags.Deleted {
		return nil, false
	}
	d.refcnt++
	return d, true
}

// BindDesc takes a reference on an already-resolved descriptor, failing if
// it has been unpublished since. Server workers use this once they hold the
// descriptor their connection resolved to at lookup time.
func (l *descriptorList) BindDesc(d *descriptor) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d.Flags.Deleted {
		return false
	}
	d.refcnt++
	return true
}

// Release gives back a reference taken by Bind (or held by the descriptor's
// owning goroutine across Unpublish). The decrementing caller that observes
// refcnt=0 and Deleted=true is the one responsible for the descriptor's
// disposal; descriptorList itself holds no further bookkeeping for it once
// unlinked, so there is nothing left to do here but drop the count.
func (l *descriptorList) Release(d *descriptor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d.refcnt--
}

// Unpublish marks name deleted and unlinks it from the name index: after
// this call no further Bind(name) ever resolves to d, regardless of how
// many references are still outstanding.
func (l *descriptorList) Unpublish(name string) (*descriptor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	d.Flags.Deleted = true
	delete(l.byName, name)
	return d, true
}

// Lookup resolves name without taking a reference; used where the caller
// does not stream (requestTopic, publisherUpdate, and the existing-name
// checks when a publisher or subscriber is created).
func (l *descriptorList) Lookup(name string) (*descriptor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.byName[name]
	return d, ok
}

// Names returns a snapshot of the currently-published names.
func (l *descriptorList) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.byName))
	for n := range l.byName {
		names = append(names, n)
	}
	return names
}

// Each applies fn to every live descriptor under the list lock. fn must not
// re-enter the list.
func (l *descriptorList) Each(fn func(*descriptor)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.byName {
		fn(d)
	}
}

// Snapshot returns the current descriptors without holding the lock while
// the caller works through them; used wherever the per-descriptor work does
// network I/O or may re-enter the list.
func (l *descriptorList) Snapshot() []*descriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*descriptor, 0, len(l.byName))
	for _, d := range l.byName {
		out = append(out, d)
	}
	return out
}
