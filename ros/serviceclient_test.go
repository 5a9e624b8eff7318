package ros

import (
	"net"
	"testing"

	"github.com/fetchrobotics/urosgo/xmlrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFakeMaster(t *testing.T, methods map[string]xmlrpc.Method) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	h := xmlrpc.NewHandler(methods)
	go h.Serve(ln)
	return "http://" + ln.Addr().String() + "/"
}

func TestDefaultServiceClientCallRoundTrips(t *testing.T) {
	srv, err := newDefaultServiceServer(NewDefaultLogger(), "/adder", "/add_two_ints", addSrvType{},
		func(s Service) error {
			req := s.ReqMessage().(*addReq)
			s.ResMessage().(*addRes).Sum = req.A + req.B
			return nil
		})
	require.NoError(t, err)
	defer srv.Shutdown()

	host, port := srv.hostAndPort()
	masterURI := startFakeMaster(t, map[string]xmlrpc.Method{
		"lookupService": func(callerID, service string) (interface{}, error) {
			return "rosrpc://" + net.JoinHostPort(host, port), nil
		},
	})

	client := newDefaultServiceClient(NewDefaultLogger(), "/caller", masterURI, "/add_two_ints", addSrvType{})
	defer client.Shutdown()

	req := &addSrv{req: addReq{A: 5, B: 6}}
	require.NoError(t, client.Call(req))
	assert.EqualValues(t, 11, req.res.Sum)
}

func TestDefaultServiceClientCallSurfacesLookupFailure(t *testing.T) {
	masterURI := startFakeMaster(t, map[string]xmlrpc.Method{})

	client := newDefaultServiceClient(NewDefaultLogger(), "/caller", masterURI, "/add_two_ints", addSrvType{})
	defer client.Shutdown()

	err := client.Call(&addSrv{})
	assert.Error(t, err)
}

func TestDefaultServiceClientPersistentReusesConnection(t *testing.T) {
	var dials int32
	srv, err := newDefaultServiceServer(NewDefaultLogger(), "/adder", "/add_two_ints", addSrvType{},
		func(s Service) error {
			req := s.ReqMessage().(*addReq)
			s.ResMessage().(*addRes).Sum = req.A + req.B
			return nil
		})
	require.NoError(t, err)
	defer srv.Shutdown()

	host, port := srv.hostAndPort()
	masterURI := startFakeMaster(t, map[string]xmlrpc.Method{
		"lookupService": func(callerID, service string) (interface{}, error) {
			dials++
			return "rosrpc://" + net.JoinHostPort(host, port), nil
		},
	})

	client := newDefaultServiceClient(NewDefaultLogger(), "/caller", masterURI, "/add_two_ints", addSrvType{},
		ServiceClientPersistent())
	defer client.Shutdown()

	for i := 0; i < 3; i++ {
		req := &addSrv{req: addReq{A: int64(i), B: 1}}
		require.NoError(t, client.Call(req))
		assert.EqualValues(t, i+1, req.res.Sum)
	}
	assert.EqualValues(t, 1, dials, "persistent client must look up the service only once")
}
