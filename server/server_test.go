package server

import (
	"context"
	"sync"
	"testing"
)

// --- helpers ---

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeMailer) mails() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

// connect opens a session and registers it under a username.
func connect(t *testing.T, s *Server, username string) *Session {
	t.Helper()

	sess := NewSession()
	s.Connect(sess)
	s.Register(username, sess.Id)
	return sess
}

// drain empties a session's event buffer.
func drain(sess *Session) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-sess.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}
