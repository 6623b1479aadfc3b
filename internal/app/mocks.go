package app

import (
	"context"
	"sync"

	"dealvalue_backend/internal/email"
	"dealvalue_backend/internal/logger"
)

// MockEmailProvider используется для тестов и локальной разработки.
// Письма не отправляются, а запоминаются.
type MockEmailProvider struct {
	mu   sync.Mutex
	sent []email.Email
}

func (m *MockEmailProvider) Send(ctx context.Context, e *email.Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, *e)
	m.mu.Unlock()
	logger.CtxInfo(ctx, "Mock email captured", "to", e.ToEmail, "subject", e.Subject)
	return nil
}

// Sent возвращает копию отправленных писем
func (m *MockEmailProvider) Sent() []email.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Email(nil), m.sent...)
}

func (m *MockEmailProvider) Validate() error { return nil }
func (m *MockEmailProvider) Close() error    { return nil }
