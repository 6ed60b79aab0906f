package smtp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (Client, error) {
	args := m.Called()
	if c := args.Get(0); c != nil {
		return c.(Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransport) Sender() string {
	return m.Called().String(0)
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type fakeClient struct {
	from    string
	rcpt    []string
	data    *bufferCloser
	rcptErr error
	quit    bool
	closed  bool
}

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error {
	if c.rcptErr != nil {
		return c.rcptErr
	}
	c.rcpt = append(c.rcpt, to)
	return nil
}
func (c *fakeClient) Data() (io.WriteCloser, error) { c.data = &bufferCloser{}; return c.data, nil }
func (c *fakeClient) Quit() error                   { c.quit = true; return nil }
func (c *fakeClient) Close() error                  { c.closed = true; return nil }

func TestMailer_Send(t *testing.T) {
	client := &fakeClient{}
	transport := new(MockTransport)
	transport.On("Sender").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil)

	err := NewMailer(transport).Send(context.Background(), "student@example.com", "Course updated", "New lessons")
	require.NoError(t, err)

	assert.Equal(t, "noreply@example.com", client.from)
	assert.Equal(t, []string{"student@example.com"}, client.rcpt)
	assert.True(t, client.data.closed)
	assert.True(t, client.quit)
	assert.True(t, client.closed)

	msg := client.data.String()
	assert.Contains(t, msg, "To: student@example.com\r\n")
	assert.Contains(t, msg, "Subject: Course updated\r\n")
	assert.Contains(t, msg, "\r\n\r\nNew lessons")
	transport.AssertExpectations(t)
}

func TestMailer_SendKeepsHeadersOnOneLine(t *testing.T) {
	client := &fakeClient{}
	transport := new(MockTransport)
	transport.On("Sender").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil)

	err := NewMailer(transport).Send(context.Background(), "student@example.com", "X\r\nBcc: attacker@example.com", "body")
	require.NoError(t, err)

	msg := client.data.String()
	assert.Contains(t, msg, "Subject: X  Bcc: attacker@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.Equal(t, []string{"student@example.com"}, client.rcpt)
}

func TestMailer_SendErrors(t *testing.T) {
	t.Run("connect fails", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("Sender").Return("noreply@example.com")
		transport.On("Connect").Return(nil, errors.New("dial tcp: refused"))

		err := NewMailer(transport).Send(context.Background(), "a@b.c", "s", "b")
		assert.ErrorContains(t, err, "refused")
	})

	t.Run("recipient rejected", func(t *testing.T) {
		client := &fakeClient{rcptErr: errors.New("550 no such user")}
		transport := new(MockTransport)
		transport.On("Sender").Return("noreply@example.com")
		transport.On("Connect").Return(client, nil)

		err := NewMailer(transport).Send(context.Background(), "a@b.c", "s", "b")
		assert.ErrorContains(t, err, "550")
		assert.True(t, client.closed)
	})

	t.Run("canceled context", func(t *testing.T) {
		transport := new(MockTransport)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewMailer(transport).Send(ctx, "a@b.c", "s", "b")
		assert.ErrorIs(t, err, context.Canceled)
		transport.AssertNotCalled(t, "Connect")
	})
}
