package ros

import "bytes"

// Reader is what a generated message's Deserialize method reads field
// values from. It is the stdlib reader rather than a bespoke type so
// generated code can use ReadByte/Len/Next directly.
type Reader = bytes.Reader

// MessageType is implemented by the per-message-definition type a code
// generator emits (e.g. std_msgs/String). Name/MD5Sum/Text feed the TCPROS
// connection-header validation and rosmsg-style introspection calls.
type MessageType interface {
	Text() string
	MD5Sum() string
	Name() string
	NewMessage() Message
}

// Message is implemented by a single message instance.
type Message interface {
	GetType() MessageType
	Serialize(buf *bytes.Buffer) error
	Deserialize(buf *Reader) error
}

// ServiceType is the service-definition analogue of MessageType: it
// describes the request/response message pair and carries the combined
// md5sum TCPROS negotiates during a service handshake.
type ServiceType interface {
	MD5Sum() string
	Name() string
	RequestType() MessageType
	ResponseType() MessageType
	NewService() Service
}

// Service is implemented by a single request/response pair instance.
type Service interface {
	ReqMessage() Message
	ResMessage() Message
}
