package xmlrpc

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// httpReasonPhrases maps the status codes the streamer ever emits to their
// canonical reason phrase.
var httpReasonPhrases = map[int]string{
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
}

// Options controls streamer behavior.
type Options struct {
	// UseStringTag wraps string values in <string>...</string> instead of
	// emitting bare text inside <value>.
	UseStringTag bool
	// FixedContentLength, when non-zero, enables the legacy fixed
	// Content-Length mode: every emitted message's body is
	// padded with trailing LF bytes to exactly this many bytes, and the
	// Content-Length header always reports this same fixed value. This is
	// required only for interoperability with older Master implementations
	// that validate Content-Length before parsing the body; the default
	// (zero) streams an accurate Content-Length computed from the real
	// buffered body (a two-pass encode: the whole body is always built in
	// memory before the header is written, so there is nothing to "hack").
	FixedContentLength int
}

// Streamer is a buffered writer producing HTTP framing and XMLRPC-encoded
// method calls/responses. A Streamer is bound to one connection and is not
// safe for concurrent use.
type Streamer struct {
	w    io.Writer
	body bytes.Buffer
	opts Options
}

// NewStreamer wraps w in a streamer with the given options.
func NewStreamer(w io.Writer, opts Options) *Streamer {
	return &Streamer{w: w, opts: opts}
}

func (s *Streamer) reset() {
	s.body.Reset()
}

func (s *Streamer) writeValue(v Value) {
	s.body.WriteString("<value>")
	switch v.Class {
	case Int:
		fmt.Fprintf(&s.body, "<int>%d</int>", v.Int)
	case Bool:
		n := 0
		if v.Bool {
			n = 1
		}
		fmt.Fprintf(&s.body, "<boolean>%d</boolean>", n)
	case Str:
		if s.opts.UseStringTag {
			s.body.WriteString("<string>")
			s.body.WriteString(v.Str)
			s.body.WriteString("</string>")
		} else {
			s.body.WriteString(v.Str)
		}
	case Double:
		s.body.WriteString("<double>")
		s.body.WriteString(formatDouble(v.Double))
		s.body.WriteString("</double>")
	case Array:
		s.body.WriteString("<array><data>")
		for _, e := range v.Array {
			s.writeValue(e)
		}
		s.body.WriteString("</data></array>")
	case Struct:
		// Documented limitation: struct values are tagged but carry no
		// fields.
		s.body.WriteString("<struct></struct>")
	case Base64:
		s.body.WriteString("<base64></base64>")
	}
	s.body.WriteString("</value>")
}

// formatDouble emits an integer-plus-fractional-part encoding with a fixed
// 10-digit fractional scale, well-defined only near integers. The
// fixed-width form keeps the body size predictable for the fixed
// Content-Length path.
func formatDouble(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := math.Trunc(v)
	frac := v - whole
	scaled := uint64(math.Round(frac * 1e10))
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%010d", sign, int64(whole), scaled)
}

func (s *Streamer) writeMethodCallBody(method string, params []Value) {
	s.body.WriteString(`<?xml version="1.0"?>`)
	s.body.WriteString("<methodCall><methodName>")
	s.body.WriteString(method)
	s.body.WriteString("</methodName><params>")
	for _, p := range params {
		s.body.WriteString("<param>")
		s.writeValue(p)
		s.body.WriteString("</param>")
	}
	s.body.WriteString("</params></methodCall>")
}

func (s *Streamer) writeMethodResponseBody(code int32, statusMessage string, value Value) {
	s.body.WriteString(`<?xml version="1.0"?>`)
	s.body.WriteString("<methodResponse><params><param><value><array><data>")
	s.writeValue(NewInt(code))
	s.writeValue(NewString(statusMessage))
	s.writeValue(value)
	s.body.WriteString("</data></array></value></param></params></methodResponse>")
}

// applyFixedContentLength pads s.body with trailing LFs to exactly
// FixedContentLength bytes, returning the Content-Length value to emit.
// Because this streamer always buffers the full body before writing the
// header, padding the in-memory body suffices; an already-flushed header
// never has to be rewritten in place.
func (s *Streamer) applyFixedContentLength() (int, error) {
	if s.opts.FixedContentLength == 0 {
		return s.body.Len(), nil
	}
	n := s.opts.FixedContentLength
	if s.body.Len() > n {
		return 0, errors.Wrapf(ErrBadParam, "message body %d bytes exceeds fixed content length %d", s.body.Len(), n)
	}
	for s.body.Len() < n {
		s.body.WriteByte('\n')
	}
	return n, nil
}

// SendMethodCall writes an HTTP POST request carrying a methodCall
// envelope for method with the given params, then flushes it.
func (s *Streamer) SendMethodCall(host, method string, params []Value) error {
	s.reset()
	s.writeMethodCallBody(method, params)
	contentLength, err := s.applyFixedContentLength()
	if err != nil {
		return err
	}
	var head bytes.Buffer
	fmt.Fprintf(&head, "POST /RPC2 HTTP/1.1\r\n")
	fmt.Fprintf(&head, "Host: %s\r\n", host)
	fmt.Fprintf(&head, "User-Agent: urosgo/1.0\r\n")
	fmt.Fprintf(&head, "Content-Type: text/xml\r\n")
	fmt.Fprintf(&head, "Content-Length: %d\r\n", contentLength)
	fmt.Fprintf(&head, "\r\n")
	if _, err := s.w.Write(head.Bytes()); err != nil {
		return errors.Wrap(ErrNoConn, err.Error())
	}
	if _, err := s.w.Write(s.body.Bytes()); err != nil {
		return errors.Wrap(ErrNoConn, err.Error())
	}
	return nil
}

// httpStatusLine formats "HTTP/1.1 <code> <reason>\r\n".
func httpStatusLine(code int) string {
	reason := httpReasonPhrases[code]
	if reason == "" {
		reason = "Unknown"
	}
	return fmt.Sprintf("HTTP/1.1 %d %s\r\n", code, reason)
}

// SendMethodResponse writes an HTTP 200 response carrying a methodResponse
// envelope [code, statusMessage, value].
func (s *Streamer) SendMethodResponse(code int32, statusMessage string, value Value) error {
	s.reset()
	s.writeMethodResponseBody(code, statusMessage, value)
	contentLength, err := s.applyFixedContentLength()
	if err != nil {
		return err
	}
	var head bytes.Buffer
	head.WriteString(httpStatusLine(200))
	fmt.Fprintf(&head, "Content-Type: text/xml\r\n")
	fmt.Fprintf(&head, "Content-Length: %d\r\n", contentLength)
	fmt.Fprintf(&head, "\r\n")
	if _, err := s.w.Write(head.Bytes()); err != nil {
		return errors.Wrap(ErrNoConn, err.Error())
	}
	if _, err := s.w.Write(s.body.Bytes()); err != nil {
		return errors.Wrap(ErrNoConn, err.Error())
	}
	return nil
}
