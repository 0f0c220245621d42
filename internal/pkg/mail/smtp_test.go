package mail

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@libris.local"})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestSMTP_Build(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@libris.local", FromName: "Libris"})
	require.NoError(t, err)

	t.Run("NoRecipients", func(t *testing.T) {
		_, err := s.build(Message{Subject: "OTP Code", TextBody: "123456"})
		assert.ErrorIs(t, err, ErrSMTPNoRecipients)
	})

	t.Run("NoSender", func(t *testing.T) {
		noFrom, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025})
		require.NoError(t, err)

		_, err = noFrom.build(Message{To: []string{"alice@example.com"}})
		assert.ErrorIs(t, err, ErrSMTPNoSender)
	})

	t.Run("InvalidRecipient", func(t *testing.T) {
		_, err := s.build(Message{To: []string{"not an address"}})
		assert.Error(t, err)
	})

	t.Run("OK", func(t *testing.T) {
		m, err := s.build(Message{
			To:       []string{"alice@example.com"},
			Subject:  "OTP Code",
			TextBody: "Your code is 482913",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"OTP Code"}, m.GetGenHeader("Subject"))
	})

	t.Run("DefaultSenderKeepsDisplayName", func(t *testing.T) {
		for _, from := range []string{"", "noreply@libris.local"} {
			m, err := s.build(Message{From: from, To: []string{"alice@example.com"}, Subject: "OTP Code"})
			require.NoError(t, err)

			got := m.GetFrom()
			require.Len(t, got, 1)
			assert.Equal(t, "Libris", got[0].Name)
			assert.Equal(t, "noreply@libris.local", got[0].Address)
		}
	})

	t.Run("OtherSenderAsGiven", func(t *testing.T) {
		m, err := s.build(Message{From: "loans@libris.local", To: []string{"alice@example.com"}})
		require.NoError(t, err)

		got := m.GetFrom()
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Name)
		assert.Equal(t, "loans@libris.local", got[0].Address)
	})
}

func TestNewSMTP_TLSPolicy(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		want gomail.TLSPolicy
	}{
		{
			name: "Mandatory",
			cfg:  SMTPConfig{Host: "smtp.example.com", Port: 587, TLS: true, Username: "relay", Password: "secret"},
			want: gomail.TLSMandatory,
		},
		{
			name: "OpportunisticWithCredentials",
			cfg:  SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "relay", Password: "secret"},
			want: gomail.TLSOpportunistic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSMTP(tt.cfg)

			require.NoError(t, err)
			assert.Equal(t, tt.want, s.policy)
		})
	}
}

func TestSMTP_SendConnectionRefused(t *testing.T) {
	// Arrange: grab a free port and close it so the dial fails.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: port, From: "noreply@libris.local", Timeout: time.Second})
	require.NoError(t, err)

	// Act
	err = s.Send(context.Background(), Message{To: []string{"alice@example.com"}, Subject: "OTP Code", TextBody: "482913"})

	// Assert
	assert.Error(t, err)
}

func TestLog_Send(t *testing.T) {
	l := NewLog()

	assert.ErrorIs(t, l.Send(context.Background(), Message{}), ErrSMTPNoRecipients)
	assert.NoError(t, l.Send(context.Background(), Message{To: []string{"alice@example.com"}, Subject: "OTP Code"}))
	assert.NoError(t, l.Close())
}
