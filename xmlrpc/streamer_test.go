package xmlrpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamerRoundTripsMethodCall(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamer(&buf, Options{})
	err := s.SendMethodCall("localhost:11311", "registerPublisher", []Value{
		NewString("/turtlesim"),
		NewString("/turtle1/pose"),
		NewString("turtlesim/Pose"),
		NewString("http://host:11411/"),
	})
	require.NoError(t, err)

	p := NewParser(&buf)
	call, err := p.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, "registerPublisher", call.Name)
	require.Len(t, call.Params, 4)
	v, _ := call.Params[1].AsString()
	assert.Equal(t, "/turtle1/pose", v)
}

func TestStreamerRoundTripsMethodResponse(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamer(&buf, Options{})
	err := s.SendMethodResponse(1, "", NewArray([]Value{NewString("http://sub1:1234/")}))
	require.NoError(t, err)

	p := NewParser(&buf)
	resp, err := p.ParseResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Code)
	arr, err := resp.Value.AsArray()
	require.NoError(t, err)
	require.Len(t, arr, 1)
}

func TestFixedContentLengthPadsBodyToExactLength(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamer(&buf, Options{FixedContentLength: 4096})
	err := s.SendMethodCall("localhost:11311", "getPid", []Value{NewString("/turtlesim")})
	require.NoError(t, err)

	idx := bytes.Index(buf.Bytes(), []byte("\r\n\r\n"))
	require.Greater(t, idx, 0)
	bodyLen := buf.Len() - (idx + 4)
	assert.Equal(t, 4096, bodyLen)

	p := NewParser(bytes.NewReader(buf.Bytes()))
	call, err := p.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, "getPid", call.Name)
}

func TestFixedContentLengthErrorsWhenBodyTooLarge(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamer(&buf, Options{FixedContentLength: 8})
	err := s.SendMethodCall("localhost:11311", "registerPublisher", []Value{
		NewString("/turtlesim"), NewString("/turtle1/pose"), NewString("turtlesim/Pose"), NewString("http://host:11411/"),
	})
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestWriteValueIntExactBytes(t *testing.T) {
	var s Streamer
	s.writeValue(NewInt(42))
	assert.Equal(t, "<value><int>42</int></value>", s.body.String())
}

func TestWriteValueBareStringExactBytes(t *testing.T) {
	var s Streamer
	s.writeValue(NewString("hello"))
	assert.Equal(t, "<value>hello</value>", s.body.String())
}

func TestFormatDoubleNearIntegers(t *testing.T) {
	assert.Equal(t, "3.0000000000", formatDouble(3.0))
	assert.Equal(t, "-2.5000000000", formatDouble(-2.5))
}
