package ros

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderFieldsRoundTrip(t *testing.T) {
	headers := clientTopicHeader("/talker", "/chatter", "abc123", "std_msgs/String", true)
	decoded, err := decodeHeaderFields(encodeHeaderFields(headers))
	require.NoError(t, err)
	assert.Equal(t, headers, decoded)
}

func TestDecodeHeaderFieldsRejectsMissingEquals(t *testing.T) {
	var buf []byte
	field := "bogusfield"
	buf = append(buf, byte(len(field)), 0, 0, 0)
	buf = append(buf, field...)
	_, err := decodeHeaderFields(buf)
	assert.ErrorIs(t, err, ErrParse)
}

func TestConnectionHeaderRoundTripsOverAPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sent := clientServiceHeader("/caller", "/add_two_ints", "abcd", "pkg/Req", "pkg/Res", "pkg/AddTwoInts", true)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- writeConnectionHeader(ctx, client, sent) }()

	got, err := readConnectionHeader(ctx, server)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, sent, got)
}

func TestHeaderValueAndRequireFields(t *testing.T) {
	headers := []header{{Key: "callerid", Value: "/talker"}, {Key: "topic", Value: "/chatter"}}
	v, ok := headerValue(headers, "topic")
	assert.True(t, ok)
	assert.Equal(t, "/chatter", v)

	_, ok = headerValue(headers, "missing")
	assert.False(t, ok)

	assert.NoError(t, requireFields(headers, "callerid", "topic"))
	assert.ErrorIs(t, requireFields(headers, "md5sum"), ErrParse)
}

func TestMatchTypeAndMD5ExactMatch(t *testing.T) {
	headers := []header{{Key: "md5sum", Value: "abc"}, {Key: "type", Value: "std_msgs/String"}}
	assert.NoError(t, matchTypeAndMD5(headers, "std_msgs/String", "abc", false))
	assert.ErrorIs(t, matchTypeAndMD5(headers, "std_msgs/String", "xyz", false), ErrBadParam)
	assert.ErrorIs(t, matchTypeAndMD5(headers, "std_msgs/Int32", "abc", false), ErrBadParam)
}

func TestMatchTypeAndMD5ServiceWildcards(t *testing.T) {
	wildcard := []header{{Key: "md5sum", Value: "*"}}
	assert.NoError(t, matchTypeAndMD5(wildcard, "pkg/Req", "realsum", true))

	missingType := []header{{Key: "md5sum", Value: "realsum"}}
	assert.NoError(t, matchTypeAndMD5(missingType, "pkg/Req", "realsum", true))

	missingTypeNonService := []header{{Key: "md5sum", Value: "realsum"}}
	assert.ErrorIs(t, matchTypeAndMD5(missingTypeNonService, "pkg/Req", "realsum", false), ErrParse)
}

func TestWithProbeAppendsProbeField(t *testing.T) {
	base := clientTopicHeader("/talker", "/chatter", "abc", "std_msgs/String", false)
	probed := withProbe(base)
	v, ok := headerValue(probed, "probe")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Len(t, base, len(probed)-1, "withProbe must not mutate its input slice")
}

func TestTcprosHostPortParsesRosrpcURI(t *testing.T) {
	host, port, err := tcprosHostPort("rosrpc://10.0.0.1:5678")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", host)
	assert.Equal(t, "5678", port)
}

func TestBoolFieldRoundTrip(t *testing.T) {
	assert.Equal(t, "1", boolField(true))
	assert.Equal(t, "0", boolField(false))
	assert.True(t, parseBoolField("1"))
	assert.True(t, parseBoolField("true"))
	assert.False(t, parseBoolField("0"))
}
