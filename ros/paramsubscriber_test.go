package ros

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamSubscriberUpdateDispatchesToCallback(t *testing.T) {
	p := newParamSubscriber()
	var got interface{}
	p.subscribe("/rate", func(v interface{}) { got = v })

	ok := p.update("/rate", 10.0)
	assert.True(t, ok)
	assert.Equal(t, 10.0, got)
}

func TestParamSubscriberUpdateUnknownKeyReturnsFalse(t *testing.T) {
	p := newParamSubscriber()
	assert.False(t, p.update("/unknown", 1))
}

func TestParamSubscriberUnsubscribeStopsDispatch(t *testing.T) {
	p := newParamSubscriber()
	calls := 0
	p.subscribe("/rate", func(v interface{}) { calls++ })
	p.unsubscribe("/rate")

	assert.False(t, p.update("/rate", 1))
	assert.Equal(t, 0, calls)
}

func TestParamSubscriberKeys(t *testing.T) {
	p := newParamSubscriber()
	p.subscribe("/a", func(interface{}) {})
	p.subscribe("/b", func(interface{}) {})
	assert.ElementsMatch(t, []string{"/a", "/b"}, p.keys())
}
