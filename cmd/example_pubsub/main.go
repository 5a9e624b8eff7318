// Command example_pubsub demonstrates a minimal publisher/subscriber node
// built on the ros package: it publishes an incrementing greeting on /chatter
// and, in the same process, subscribes to it and logs what it received.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fetchrobotics/urosgo/examplemsgs"
	"github.com/fetchrobotics/urosgo/ros"
)

func main() {
	node, err := ros.NewNode("example_pubsub", os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer node.Shutdown()

	logger := node.Logger()
	go node.Spin()

	pub := node.NewPublisher("chatter", examplemsgs.StringType, ros.WithLatching())
	node.NewSubscriber("chatter", examplemsgs.StringType, func(msg *examplemsgs.StringMessage) {
		logger.Infof("received: %s", msg.Data)
	})

	count := 0
	for node.OK() {
		pub.Publish(&examplemsgs.StringMessage{Data: fmt.Sprintf("hello world %d", count)})
		count++
		time.Sleep(time.Second)
	}
}
