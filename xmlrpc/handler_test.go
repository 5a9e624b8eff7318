package xmlrpc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerDispatchesRegisteredMethod(t *testing.T) {
	methods := map[string]Method{
		"getPid": func(callerID string) (interface{}, error) {
			return 1234, nil
		},
		"paramUpdate": func(callerID, key string, value interface{}) (interface{}, error) {
			return 0, nil
		},
	}
	h := NewHandler(methods)

	client, server := net.Pipe()
	go h.ServeConn(server)

	s := NewStreamer(client, Options{})
	require.NoError(t, s.SendMethodCall("n/a", "getPid", []Value{NewString("/turtlesim")}))
	p := NewParser(client)
	resp, err := p.ParseResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Code)
	n, err := resp.Value.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1234), n)
}

func TestHandlerUnknownMethodReturnsFailureCode(t *testing.T) {
	h := NewHandler(map[string]Method{})
	client, server := net.Pipe()
	go h.ServeConn(server)

	s := NewStreamer(client, Options{})
	require.NoError(t, s.SendMethodCall("n/a", "bogus", nil))
	p := NewParser(client)
	resp, err := p.ParseResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(0), resp.Code)
}

func TestHandlerBindsArrayParam(t *testing.T) {
	var got []interface{}
	methods := map[string]Method{
		"publisherUpdate": func(callerID, topic string, publishers []interface{}) (interface{}, error) {
			got = publishers
			return 0, nil
		},
	}
	h := NewHandler(methods)
	client, server := net.Pipe()
	go h.ServeConn(server)

	s := NewStreamer(client, Options{})
	require.NoError(t, s.SendMethodCall("n/a", "publisherUpdate", []Value{
		NewString("/turtlesim"),
		NewString("/turtle1/pose"),
		NewArray([]Value{NewString("http://a:1/"), NewString("http://b:2/")}),
	}))
	p := NewParser(client)
	resp, err := p.ParseResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Code)
	require.Len(t, got, 2)
}
