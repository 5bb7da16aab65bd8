package jetstream

import (
	"context"
	"errors"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"
	"testing"
	"time"
	"venue-booking/common/constant"
)

type fakeMsg struct {
	jetstream.Msg

	subject  string
	data     []byte
	acked    bool
	nakDelay time.Duration
	naked    bool
}

func (m *fakeMsg) Subject() string { return m.subject }
func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Ack() error {
	m.acked = true
	return nil
}
func (m *fakeMsg) NakWithDelay(delay time.Duration) error {
	m.naked = true
	m.nakDelay = delay
	return nil
}

type ConsumerTestSuite struct {
	suite.Suite
}

func TestConsumerTestSuite(t *testing.T) {
	suite.Run(t, new(ConsumerTestSuite))
}

func (s *ConsumerTestSuite) TestHandle() {
	var received []byte
	handlers := map[string]Handler{
		constant.SubjectSendEmail: func(ctx context.Context, msg []byte) error {
			received = msg
			return nil
		},
		constant.SubjectBookingCreated: func(ctx context.Context, msg []byte) error {
			return errors.New("smtp down")
		},
	}

	tests := []struct {
		name          string
		msg           *fakeMsg
		expectAck     bool
		expectNak     bool
		expectPayload string
	}{
		{
			name:          "handler success acks",
			msg:           &fakeMsg{subject: constant.SubjectSendEmail, data: []byte(`{"to":"x"}`)},
			expectAck:     true,
			expectPayload: `{"to":"x"}`,
		},
		{
			name:      "handler error naks",
			msg:       &fakeMsg{subject: constant.SubjectBookingCreated, data: []byte(`{}`)},
			expectNak: true,
		},
		{
			name:      "unknown subject acks",
			msg:       &fakeMsg{subject: "events.unknown", data: []byte(`{}`)},
			expectAck: true,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			received = nil

			handle(context.Background(), tc.msg, handlers, 2*time.Second)

			s.Equal(tc.expectAck, tc.msg.acked)
			s.Equal(tc.expectNak, tc.msg.naked)
			if tc.expectNak {
				s.Equal(2*time.Second, tc.msg.nakDelay)
			}
			if tc.expectPayload != "" {
				s.Equal(tc.expectPayload, string(received))
			}
		})
	}
}
