package xmlrpc

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(n int) string { return strconv.Itoa(n) }

func TestParseRequestSimpleCall(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>getPid</methodName>` +
		`<params><param><value><string>/turtlesim</string></value></param></params></methodCall>`
	raw := "POST /RPC2 HTTP/1.1\r\n" +
		"Content-Type: text/xml\r\n" +
		"Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body

	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, "getPid", call.Name)
	require.Len(t, call.Params, 1)
	s, err := call.Params[0].AsString()
	require.NoError(t, err)
	assert.Equal(t, "/turtlesim", s)
}

func TestParseRequestBarePathAlsoAccepted(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>getPid</methodName><params></params></methodCall>`
	raw := "POST / HTTP/1.1\r\n" +
		"Content-Type: text/xml\r\n" +
		"Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, "getPid", call.Name)
	assert.Empty(t, call.Params)
}

func TestParseResponseSuccess(t *testing.T) {
	body := `<?xml version="1.0"?><methodResponse><params><param><value><array><data>` +
		`<value><i4>1</i4></value><value><string></string></value><value><i4>42</i4></value>` +
		`</data></array></value></param></params></methodResponse>`
	raw := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/xml\r\n" +
		"Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	p := NewParser(strings.NewReader(raw))
	resp, err := p.ParseResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Code)
	assert.Equal(t, "", resp.StatusMessage)
	n, err := resp.Value.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)
}

func TestParseResponseNon200IsBadConn(t *testing.T) {
	raw := "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\n\r\n"
	p := NewParser(strings.NewReader(raw))
	_, err := p.ParseResponse()
	assert.ErrorIs(t, err, ErrBadConn)
}

func TestDrainBodyConsumesFixedLengthPadding(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>getPid</methodName><params></params></methodCall>`
	padded := body + "\n\n\n\n"
	raw := "POST /RPC2 HTTP/1.1\r\n" +
		"Content-Type: text/xml\r\n" +
		"Content-Length: " + itoa(len(padded)) + "\r\n\r\n" + padded + "GARBAGE-AFTER-BODY"
	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, "getPid", call.Name)
	// whatever remains after drainBody should be exactly the un-accounted tail
	rest, _ := p.read(len("GARBAGE-AFTER-BODY"))
	assert.Equal(t, "GARBAGE-AFTER-BODY", string(rest))
}

func TestParseArrayNested(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>m</methodName><params>` +
		`<param><value><array><data>` +
		`<value><array><data><value><i4>1</i4></value><value><i4>2</i4></value></data></array></value>` +
		`<value><string>x</string></value>` +
		`</data></array></value></param></params></methodCall>`
	raw := "POST /RPC2 HTTP/1.1\r\nContent-Type: text/xml\r\nContent-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	require.Len(t, call.Params, 1)
	arr, err := call.Params[0].AsArray()
	require.NoError(t, err)
	require.Len(t, arr, 2)
	inner, err := arr[0].AsArray()
	require.NoError(t, err)
	require.Len(t, inner, 2)
}

func TestParseValueSkipsComments(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>m</methodName><params>` +
		`<!-- a comment --><param><value><!-- inline --><i4>7</i4></value></param></params></methodCall>`
	raw := "POST /RPC2 HTTP/1.1\r\nContent-Type: text/xml\r\nContent-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	n, err := call.Params[0].AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(7), n)
}

func TestParseValueUnimplementedBase64AndStruct(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>m</methodName><params>` +
		`<param><value><base64>aGVsbG8=</base64></value></param>` +
		`<param><value><struct><member><name>k</name><value><i4>1</i4></value></member></struct></value></param>` +
		`</params></methodCall>`
	raw := "POST /RPC2 HTTP/1.1\r\nContent-Type: text/xml\r\nContent-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	p := NewParser(strings.NewReader(raw))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	require.Len(t, call.Params, 2)
	assert.Equal(t, Base64, call.Params[0].Class)
	assert.Equal(t, Struct, call.Params[1].Class)
}
