package ros

import "github.com/pkg/errors"

// Sentinel errors for the TCPROS half of the error taxonomy. The
// xmlrpc package carries its own identical set for the XMLRPC half; the two
// are intentionally distinct values so a caller can tell which subsystem
// raised one with errors.Is, even though both ultimately report the same
// seven conditions. NOMEM is not ported — see DESIGN.md.
var (
	ErrTimeout        = errors.New("ros: timeout")
	ErrParse          = errors.New("ros: parse error")
	ErrEOF            = errors.New("ros: unexpected eof")
	ErrBadParam       = errors.New("ros: bad parameter")
	ErrNoConn         = errors.New("ros: no connection")
	ErrBadConn        = errors.New("ros: bad connection")
	ErrNotImplemented = errors.New("ros: not implemented")
)
