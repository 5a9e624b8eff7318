package ros

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// messageEvent carries one still-serialized message off the wire together
// with the metadata a subscriber callback's optional MessageEvent argument
// wants; deserialization is deferred to dispatch time so each registered
// callback gets its own freshly-decoded Message instance.
type messageEvent struct {
	bytes []byte
	event MessageEvent
}

// reconnectDelay is how long a subscription waits between a failed dial (or
// a dropped connection) and its next attempt.
const reconnectDelay = 1 * time.Second

// readPollInterval bounds each blocking read so the loop can observe a
// cancelled context at message boundaries.
const readPollInterval = 500 * time.Millisecond

// subscription owns the TCPROS connection to exactly one publisher: dial,
// handshake, and a read loop feeding decoded frames to the owning
// subscriber's msgChan.
type subscription struct {
	pubURI   string
	topic    string
	callerID string
	msgType  MessageType
	msgChan  chan messageEvent
	logger   Logger
}

func newSubscription(pubURI, topic, callerID string, msgType MessageType, msgChan chan messageEvent, logger Logger) *subscription {
	return &subscription{pubURI: pubURI, topic: topic, callerID: callerID, msgType: msgType, msgChan: msgChan, logger: logger}
}

// run dials pubURI, repeating on failure until ctx is cancelled (the
// subscriber cancels this subscription's context when the publisher drops
// off the Master's publisher list for this topic).
func (s *subscription) run(ctx context.Context) {
	for ctx.Err() == nil {
		conn, err := s.connect(ctx)
		if err != nil {
			s.logger.Debugf("subscription %s<-%s: connect failed: %v", s.topic, s.pubURI, err)
			select {
			case <-time.After(reconnectDelay):
				continue
			case <-ctx.Done():
				return
			}
		}
		err = s.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.logger.Debugf("subscription %s<-%s: read loop ended: %v", s.topic, s.pubURI, err)
		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *subscription) connect(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.pubURI)
	if err != nil {
		return nil, wrapTCPErr(err)
	}
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	if err := writeConnectionHeader(ctx, conn, clientTopicHeader(s.callerID, s.topic, s.msgType.MD5Sum(), s.msgType.Name(), true)); err != nil {
		conn.Close()
		return nil, err
	}
	headers, err := readConnectionHeader(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, ok := headerValue(headers, "error"); ok {
		conn.Close()
		return nil, ErrBadConn
	}
	if err := matchTypeAndMD5(headers, s.msgType.Name(), s.msgType.MD5Sum(), false); err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return conn, nil
}

func (s *subscription) readLoop(ctx context.Context, conn net.Conn) error {
	cr := &countingReader{r: conn}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cr.n = 0
		conn.SetReadDeadline(time.Now().Add(readPollInterval))
		payload, err := readTCPRosMessage(ctx, cr)
		if err != nil {
			// An idle timeout between frames just means no message arrived
			// this interval; a timeout mid-frame means the stream stalled.
			if errors.Is(err, ErrTimeout) && cr.n == 0 {
				continue
			}
			return err
		}
		select {
		case s.msgChan <- messageEvent{
			bytes: payload,
			event: MessageEvent{PublisherName: s.pubURI, ReceiptTime: time.Now()},
		}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
