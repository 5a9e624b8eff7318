// Package examplemsgs provides a handful of hand-written message and
// service types for the cmd/example_pubsub and cmd/example_service
// programs, in place of the gengo-generated packages a real ROS message
// definition would produce.
package examplemsgs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/fetchrobotics/urosgo/ros"
)

func init() {
	ros.RegisterMessageType(StringType)
	ros.RegisterServiceType(AddTwoIntsType)
}

// StringMessage mirrors std_msgs/String's wire layout: a single uint32
// length prefix followed by the raw UTF-8 bytes.
type StringMessage struct {
	Data string
}

type stringMessageType struct{}

// StringType is the MessageType for StringMessage, with std_msgs/String's
// real MD5 sum so a genuine ROS subscriber would accept it.
var StringType ros.MessageType = stringMessageType{}

func (stringMessageType) Text() string    { return "string data" }
func (stringMessageType) MD5Sum() string  { return "992ce8a1687cec8c8bd883ec73ca41d1" }
func (stringMessageType) Name() string    { return "std_msgs/String" }
func (stringMessageType) NewMessage() ros.Message { return &StringMessage{} }

func (m *StringMessage) GetType() ros.MessageType { return StringType }

func (m *StringMessage) Serialize(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(m.Data))); err != nil {
		return err
	}
	_, err := buf.WriteString(m.Data)
	return err
}

func (m *StringMessage) Deserialize(buf *ros.Reader) error {
	var n uint32
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(buf, data); err != nil {
		return err
	}
	m.Data = string(data)
	return nil
}

// AddTwoIntsRequest/Response mirror roscpp_tutorials/AddTwoInts: two int64
// summands in, one int64 sum out.
type AddTwoIntsRequest struct {
	A int64
	B int64
}

type AddTwoIntsResponse struct {
	Sum int64
}

func (r *AddTwoIntsRequest) GetType() ros.MessageType { return addTwoIntsReqType{} }
func (r *AddTwoIntsRequest) Serialize(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.LittleEndian, r.A); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, r.B)
}
func (r *AddTwoIntsRequest) Deserialize(buf *ros.Reader) error {
	if err := binary.Read(buf, binary.LittleEndian, &r.A); err != nil {
		return err
	}
	return binary.Read(buf, binary.LittleEndian, &r.B)
}

func (r *AddTwoIntsResponse) GetType() ros.MessageType { return addTwoIntsResType{} }
func (r *AddTwoIntsResponse) Serialize(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, r.Sum)
}
func (r *AddTwoIntsResponse) Deserialize(buf *ros.Reader) error {
	return binary.Read(buf, binary.LittleEndian, &r.Sum)
}

type addTwoIntsReqType struct{}

func (addTwoIntsReqType) Text() string            { return "int64 a\nint64 b" }
func (addTwoIntsReqType) MD5Sum() string           { return "36d09b846be0b371c5f190354dd3153e" }
func (addTwoIntsReqType) Name() string             { return "roscpp_tutorials/AddTwoIntsRequest" }
func (addTwoIntsReqType) NewMessage() ros.Message  { return &AddTwoIntsRequest{} }

type addTwoIntsResType struct{}

func (addTwoIntsResType) Text() string            { return "int64 sum" }
func (addTwoIntsResType) MD5Sum() string          { return "b88405221c77b1878a3cbbfff53428d7" }
func (addTwoIntsResType) Name() string            { return "roscpp_tutorials/AddTwoIntsResponse" }
func (addTwoIntsResType) NewMessage() ros.Message { return &AddTwoIntsResponse{} }

type addTwoIntsService struct {
	Request  AddTwoIntsRequest
	Response AddTwoIntsResponse
}

func (s *addTwoIntsService) ReqMessage() ros.Message { return &s.Request }
func (s *addTwoIntsService) ResMessage() ros.Message { return &s.Response }

type addTwoIntsServiceType struct{}

// AddTwoIntsType is the ServiceType for the add_two_ints service.
var AddTwoIntsType ros.ServiceType = addTwoIntsServiceType{}

func (addTwoIntsServiceType) MD5Sum() string             { return "6a2e34150c00229791cc89ff309fff21" }
func (addTwoIntsServiceType) Name() string                { return "roscpp_tutorials/AddTwoInts" }
func (addTwoIntsServiceType) RequestType() ros.MessageType { return addTwoIntsReqType{} }
func (addTwoIntsServiceType) ResponseType() ros.MessageType { return addTwoIntsResType{} }
func (addTwoIntsServiceType) NewService() ros.Service      { return &addTwoIntsService{} }
