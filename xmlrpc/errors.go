package xmlrpc

import "github.com/pkg/errors"

// Sentinel errors for the XMLRPC engine's error taxonomy. Callers use
// errors.Is/errors.As against these; wrapped context is added with
// github.com/pkg/errors so the original call site survives in logs.
var (
	// ErrTimeout is returned when a socket operation or wait exceeded its bound.
	ErrTimeout = errors.New("xmlrpc: timeout")
	// ErrParse is returned on any HTTP/XML/XMLRPC syntax violation.
	ErrParse = errors.New("xmlrpc: parse error")
	// ErrEOF is returned when the peer closed mid-message.
	ErrEOF = errors.New("xmlrpc: unexpected eof")
	// ErrBadParam is returned for caller-detectable input violations.
	ErrBadParam = errors.New("xmlrpc: bad parameter")
	// ErrNoConn is returned when the underlying connection is not alive.
	ErrNoConn = errors.New("xmlrpc: no connection")
	// ErrBadConn is returned when the remote peer replied with structurally
	// valid but semantically wrong data (HTTP non-200, methodResponse code
	// other than 1).
	ErrBadConn = errors.New("xmlrpc: bad connection")
	// ErrNotImplemented names deliberately unimplemented features. Nothing in
	// this package returns it: base64 and struct values are accepted
	// syntactically and skipped without an error.
	ErrNotImplemented = errors.New("xmlrpc: not implemented")
)
