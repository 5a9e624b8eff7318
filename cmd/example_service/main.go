// Command example_service demonstrates a service server and client built on
// the ros package: it serves add_two_ints in the same process that calls it.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fetchrobotics/urosgo/examplemsgs"
	"github.com/fetchrobotics/urosgo/ros"
)

func main() {
	node, err := ros.NewNode("example_service", os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer node.Shutdown()

	logger := node.Logger()
	go node.Spin()

	node.NewServiceServer("add_two_ints", examplemsgs.AddTwoIntsType, func(srv ros.Service) error {
		req := srv.ReqMessage().(*examplemsgs.AddTwoIntsRequest)
		res := srv.ResMessage().(*examplemsgs.AddTwoIntsResponse)
		res.Sum = req.A + req.B
		return nil
	})

	time.Sleep(500 * time.Millisecond)

	client := node.NewServiceClient("add_two_ints", examplemsgs.AddTwoIntsType)
	defer client.Shutdown()

	srv := examplemsgs.AddTwoIntsType.NewService()
	req := srv.ReqMessage().(*examplemsgs.AddTwoIntsRequest)
	req.A, req.B = 2, 3
	if err := client.Call(srv); err != nil {
		logger.Errorf("call failed: %v", err)
		return
	}
	res := srv.ResMessage().(*examplemsgs.AddTwoIntsResponse)
	logger.Infof("2 + 3 = %d", res.Sum)
}
