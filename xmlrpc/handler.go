package xmlrpc

import (
	"net"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Method is a Slave XMLRPC method implementation. Concrete values are plain
// Go funcs of the shape func(callerID string, ...) (interface{}, error) —
// Handler invokes them through reflection so each method can declare its own
// typed parameter list.
type Method interface{}

// ServeTimeout bounds how long Handler.ServeConn waits on a single
// request/response round trip before giving up on a misbehaving peer.
const ServeTimeout = 10 * time.Second

// Handler dispatches Slave XMLRPC requests to a fixed method table. It owns
// no state of its own; all node state lives in the closures installed in
// the table.
type Handler struct {
	methods map[string]Method
	log     *logrus.Entry
}

// NewHandler builds a Handler from the given method table.
func NewHandler(methods map[string]Method) *Handler {
	return &Handler{
		methods: methods,
		log:     logrus.WithField("component", "xmlrpc.Handler"),
	}
}

// ServeConn handles exactly one request on conn, then closes it. ROS Slave
// servers are not expected to keep connections alive across calls.
func (h *Handler) ServeConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ServeTimeout))

	p := NewParser(conn)
	call, err := p.ParseRequest()
	if err != nil {
		h.log.WithError(err).Debug("failed to parse incoming xmlrpc request")
		return
	}

	result, code, status := h.dispatch(call)
	s := NewStreamer(conn, DefaultStreamerOptions)
	if err := s.SendMethodResponse(code, status, result); err != nil {
		h.log.WithError(err).WithField("method", call.Name).Debug("failed to send xmlrpc response")
	}
}

// Serve accepts connections from ln until it returns an error (typically
// because the listener was closed), serving each on its own goroutine.
func (h *Handler) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go h.ServeConn(conn)
	}
}

// dispatch invokes the named method with call.Params, boxing the result (or
// a protocol-level error) into the (code, statusMessage, value) response
// triple every Slave method returns.
func (h *Handler) dispatch(call MethodCall) (Value, int32, string) {
	m, ok := h.methods[call.Name]
	if !ok {
		return NewInt(0), 0, "unknown method " + call.Name
	}

	fn := reflect.ValueOf(m)
	ft := fn.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() != 2 {
		return NewInt(0), 0, "malformed method handler for " + call.Name
	}

	args, err := bindArgs(ft, call.Params)
	if err != nil {
		return NewInt(0), 0, errors.Wrapf(err, "binding arguments to %s", call.Name).Error()
	}

	out := fn.Call(args)
	if errv := out[1].Interface(); errv != nil {
		err := errv.(error)
		return NewInt(0), 0, err.Error()
	}

	result, err := FromNative(out[0].Interface())
	if err != nil {
		return NewInt(0), 0, err.Error()
	}
	return result, 1, ""
}

// bindArgs converts the XMLRPC params to the reflect.Values a method's
// declared parameter types expect, including variadic trailing parameters.
func bindArgs(ft reflect.Type, params []Value) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	if ft.IsVariadic() {
		if len(params) < numIn-1 {
			return nil, errors.Wrapf(ErrBadParam, "expected at least %d arguments, got %d", numIn-1, len(params))
		}
	} else if len(params) != numIn {
		return nil, errors.Wrapf(ErrBadParam, "expected %d arguments, got %d", numIn, len(params))
	}

	args := make([]reflect.Value, len(params))
	for i, p := range params {
		var t reflect.Type
		switch {
		case ft.IsVariadic() && i >= numIn-1:
			t = ft.In(numIn - 1).Elem()
		case i < numIn:
			t = ft.In(i)
		default:
			t = reflect.TypeOf((*interface{})(nil)).Elem()
		}
		v, err := bindOne(p, t)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// bindOne converts a single Value to the reflect.Value a parameter slot of
// type t expects.
func bindOne(p Value, t reflect.Type) (reflect.Value, error) {
	native := p.Native()
	if t.Kind() == reflect.Interface {
		if native == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(native), nil
	}

	rv := reflect.ValueOf(native)
	if !rv.IsValid() {
		return reflect.Zero(t), nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	if t.Kind() == reflect.Slice && rv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(rv.Index(i).Elem())
		}
		return out, nil
	}
	return reflect.Value{}, errors.Wrapf(ErrBadParam, "cannot bind %s to %s", rv.Type(), t)
}
