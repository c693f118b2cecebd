package server

import (
	"context"
	"log"
)

// AlertPayload is sent to peers when a user raises an SOS.
type AlertPayload struct {
	Username string `json:"username"`
	Location string `json:"location"`
}

// AcceptedPayload is sent to the helper with the victim's record.
type AcceptedPayload struct {
	Saver    string   `json:"saver"`
	Victim   string   `json:"victim"`
	Location Location `json:"location"`
}

// HelperPayload tells the victim who accepted.
type HelperPayload struct {
	Saver string `json:"saver"`
}

// TriggerSOS raises a user's SOS. The flag goes up first (when a location
// record exists to hold it), then the emergency contact is emailed, then
// every other online user gets an sos-alert. The broadcast waits for the
// mail attempt to resolve but not for it to succeed.
func (s *Server) TriggerSOS(ctx context.Context, username, contact, location string) {
	s.mtx.Lock()
	if loc, ok := s.locations[username]; ok {
		loc.SosActive = true
	}
	s.mtx.Unlock()

	s.SendAlertMail(ctx, contact, username, location)

	var targets []string
	for _, u := range s.Online() {
		if u != username {
			targets = append(targets, u)
		}
	}

	s.Broadcast("sos-alert", &AlertPayload{Username: username, Location: location}, targets...)
}

// AcceptSOS records a helper taking on a victim's SOS. The helper's sessions
// get the victim's record, the victim's sessions (if any) learn who is
// coming, and the victim's flag resets so they can raise a new SOS later.
// Without a victim record or an online helper nothing happens.
func (s *Server) AcceptSOS(saver, victim string) {
	s.mtx.RLock()
	loc, hasRecord := s.locations[victim]
	var snapshot Location
	if hasRecord {
		snapshot = *loc
	}
	saverOnline := len(s.presence[saver]) > 0
	s.mtx.RUnlock()

	if !hasRecord || !saverOnline {
		return
	}

	// The helper sees the record as it stood at accept time, flag still up.
	s.Broadcast("sos-accepted", &AcceptedPayload{Saver: saver, Victim: victim, Location: snapshot}, saver)
	s.Broadcast("helper-accepted", &HelperPayload{Saver: saver}, victim)

	s.mtx.Lock()
	if loc, ok := s.locations[victim]; ok {
		loc.SosActive = false
	}
	s.mtx.Unlock()

	log.Printf("[sos] %s accepted SOS of %s", saver, victim)
}

// DeclineSOS only logs the decline. The victim's flag stays up until some
// other helper accepts.
func (s *Server) DeclineSOS(saver, victim string) {
	log.Printf("[sos] %s declined SOS request from %s", saver, victim)
}
