package notify

import (
	"context"
	"sync"

	"github.com/AdamBeresnev/bracket-admin/internal/logger"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From string
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	logger.Info("email", "from", m.From, "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}

// MemoryMailer keeps sent messages, for tests and local development.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *MemoryMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MemoryMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
