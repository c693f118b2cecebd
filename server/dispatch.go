package server

import (
	"context"
	"fmt"
	"log"
)

// Broadcast pushes an event to every open session of each target user.
// Delivery is best effort: targets with no sessions get nothing and a full
// session buffer drops the event rather than block.
func (s *Server) Broadcast(event string, data interface{}, targets ...string) {
	ev := NewEvent(event, data)

	var sessions []*Session

	s.mtx.RLock()
	for _, target := range targets {
		for id := range s.presence[target] {
			if sess, ok := s.sessions[id]; ok {
				sessions = append(sessions, sess)
			}
		}
	}
	s.mtx.RUnlock()

	for _, sess := range sessions {
		select {
		case sess.Events <- ev:
		default:
		}
	}
}

// SendAlertMail emails an SOS alert to the emergency contact. Failures are
// logged and swallowed, the in-app broadcast must not depend on them.
func (s *Server) SendAlertMail(ctx context.Context, to, username, location string) {
	if s.mailer == nil {
		log.Printf("[mail] channel disabled, skipping alert to %s", to)
		return
	}

	subject := "SOS Alert from Citizen Shield"
	body := fmt.Sprintf("User %s is in danger!\n\nLocation: %s", username, location)

	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		log.Printf("[mail] failed to send alert to %s: %v", to, err)
		return
	}

	log.Printf("[mail] SOS alert sent to %s for %s", to, username)
}
