package ros

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDifference(t *testing.T) {
	assert.Equal(t, []string{"a"}, setDifference([]string{"a", "b"}, []string{"b", "c"}))
	assert.Nil(t, setDifference([]string{"a"}, []string{"a"}))
	assert.Equal(t, []string{"a", "b"}, setDifference([]string{"a", "b"}, nil))
}

func TestDefaultSubscriberDispatchInvokesZeroOneAndTwoArgCallbacks(t *testing.T) {
	var zeroArgCalls, oneArgCalls, twoArgCalls int
	var gotMsg *testMessage
	var gotEvent MessageEvent

	sub := newDefaultSubscriber("/chatter", testMsgType{}, func() { zeroArgCalls++ })
	sub.callbacks = append(sub.callbacks,
		func(m *testMessage) { oneArgCalls++; gotMsg = m },
		func(m *testMessage, e MessageEvent) { twoArgCalls++; gotEvent = e },
	)

	jobChan := make(chan func(), 10)
	logger := NewDefaultLogger()

	msg := &testMessage{Value: 99}
	var buf bytes.Buffer
	require.NoError(t, msg.Serialize(&buf))

	sub.dispatch(messageEvent{bytes: buf.Bytes(), event: MessageEvent{PublisherName: "/talker"}}, jobChan, logger)

	for i := 0; i < 3; i++ {
		job := <-jobChan
		job()
	}

	assert.Equal(t, 1, zeroArgCalls)
	assert.Equal(t, 1, oneArgCalls)
	assert.Equal(t, 1, twoArgCalls)
	assert.EqualValues(t, 99, gotMsg.Value)
	assert.Equal(t, "/talker", gotEvent.PublisherName)
}

func TestDefaultSubscriberGetNumPublishers(t *testing.T) {
	sub := newDefaultSubscriber("/chatter", testMsgType{}, func() {})
	sub.pubList = []string{"http://a:1", "http://b:2"}
	assert.Equal(t, 2, sub.GetNumPublishers())
}

func TestDefaultSubscriberStatsTrackDispatchedBytes(t *testing.T) {
	sub := newDefaultSubscriber("/chatter", testMsgType{}, func() {})
	jobChan := make(chan func(), 10)
	sub.dispatch(messageEvent{bytes: []byte{1, 2, 3, 4}}, jobChan, NewDefaultLogger())
	<-jobChan

	msgs, nbytes := sub.stats()
	assert.EqualValues(t, 1, msgs)
	assert.EqualValues(t, 4, nbytes)
}
