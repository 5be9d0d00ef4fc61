package notify

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerPicksConsoleWithoutKey(t *testing.T) {
	_, ok := NewMailer("", "noreply@learnity.local", nil).(*ConsoleMailer)
	assert.True(t, ok)

	_, ok = NewMailer("SG.key", "noreply@learnity.local", nil).(*SendGridMailer)
	assert.True(t, ok)
}

func TestConsoleMailerWritesToLogger(t *testing.T) {
	var buf bytes.Buffer
	m := &ConsoleMailer{Logger: log.New(&buf, "", 0)}
	require.NoError(t, m.Send(context.Background(), ApplicationApproved("ann@example.com", "Ann")))
	assert.Contains(t, buf.String(), "ann@example.com")
	assert.Contains(t, buf.String(), "approved")
}

func TestSendGridPrepare(t *testing.T) {
	m := NewSendGridMailer("SG.key", "noreply@learnity.local")
	v3 := m.prepare(SessionAccepted("bob@example.com", "Bob", "Algebra", "https://meet/x", time.Now()))
	require.Len(t, v3.Personalizations, 1)
	assert.Equal(t, "[Learnity] Your tutoring session was accepted", v3.Personalizations[0].Subject)
	assert.Equal(t, "bob@example.com", v3.Personalizations[0].To[0].Address)
	assert.Len(t, v3.Content, 1)
}

func TestMemoryMailer(t *testing.T) {
	m := &MemoryMailer{}
	_ = m.Send(context.Background(), ApplicationRejected("c@example.com", "C", "missing documents"))
	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "missing documents")
}
