package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriggerSOSSetsFlagAndAlertsPeers(t *testing.T) {
	mailer := &fakeMailer{}
	s := New(mailer)

	s.UpdateLocation("alice", 51.5, -0.12)
	alice := connect(t, s, "alice")
	bob := connect(t, s, "bob")
	carol := connect(t, s, "carol")

	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "51.5,-0.12")

	loc, ok := s.Location("alice")
	require.True(t, ok)
	require.True(t, loc.SosActive)

	require.Len(t, mailer.mails(), 1)

	// every other online user gets exactly one alert, the victim none
	require.Empty(t, drain(alice))

	for _, sess := range []*Session{bob, carol} {
		events := drain(sess)
		require.Len(t, events, 1)
		require.Equal(t, "sos-alert", events[0].Event)

		payload, ok := events[0].Data.(*AlertPayload)
		require.True(t, ok)
		require.Equal(t, "alice", payload.Username)
		require.Equal(t, "51.5,-0.12", payload.Location)
	}
}

func TestTriggerSOSWithoutRecord(t *testing.T) {
	mailer := &fakeMailer{}
	s := New(mailer)

	bob := connect(t, s, "bob")

	// no location record for alice: mail and broadcast still happen,
	// there is just no record to flag
	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "51.5,-0.12")

	_, ok := s.Location("alice")
	require.False(t, ok)

	require.Len(t, mailer.mails(), 1)
	require.Len(t, drain(bob), 1)
}

func TestTriggerSOSMailFailureStillBroadcasts(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	s := New(mailer)

	s.UpdateLocation("alice", 1, 2)
	bob := connect(t, s, "bob")

	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "1,2")

	loc, _ := s.Location("alice")
	require.True(t, loc.SosActive)
	require.Len(t, drain(bob), 1)
}

func TestAcceptSOS(t *testing.T) {
	s := New(&fakeMailer{})

	s.UpdateLocation("alice", 51.5, -0.12)
	alice := connect(t, s, "alice")
	bob := connect(t, s, "bob")

	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "51.5,-0.12")
	drain(alice)
	drain(bob)

	s.AcceptSOS("bob", "alice")

	// the saver gets the victim's record as it stood, flag still up
	events := drain(bob)
	require.Len(t, events, 1)
	require.Equal(t, "sos-accepted", events[0].Event)

	accepted, ok := events[0].Data.(*AcceptedPayload)
	require.True(t, ok)
	require.Equal(t, "bob", accepted.Saver)
	require.Equal(t, "alice", accepted.Victim)
	require.Equal(t, 51.5, accepted.Location.Lat)
	require.True(t, accepted.Location.SosActive)

	// the victim learns who accepted
	events = drain(alice)
	require.Len(t, events, 1)
	require.Equal(t, "helper-accepted", events[0].Event)

	helper, ok := events[0].Data.(*HelperPayload)
	require.True(t, ok)
	require.Equal(t, "bob", helper.Saver)

	// and the flag resets so a new SOS can be raised
	loc, _ := s.Location("alice")
	require.False(t, loc.SosActive)
}

func TestAcceptSOSNoVictimRecord(t *testing.T) {
	s := New(nil)

	bob := connect(t, s, "bob")

	s.AcceptSOS("bob", "alice")

	require.Empty(t, drain(bob))
	_, ok := s.Location("alice")
	require.False(t, ok)
}

func TestAcceptSOSSaverOffline(t *testing.T) {
	s := New(&fakeMailer{})

	s.UpdateLocation("alice", 1, 2)
	alice := connect(t, s, "alice")
	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "1,2")
	drain(alice)

	s.AcceptSOS("bob", "alice")

	require.Empty(t, drain(alice))
	loc, _ := s.Location("alice")
	require.True(t, loc.SosActive, "offline saver must not resolve the SOS")
}

func TestAcceptSOSVictimOffline(t *testing.T) {
	s := New(&fakeMailer{})

	s.UpdateLocation("alice", 1, 2)
	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "1,2")

	bob := connect(t, s, "bob")

	s.AcceptSOS("bob", "alice")

	events := drain(bob)
	require.Len(t, events, 1)
	require.Equal(t, "sos-accepted", events[0].Event)

	loc, _ := s.Location("alice")
	require.False(t, loc.SosActive)
}

func TestDeclineSOSInert(t *testing.T) {
	s := New(&fakeMailer{})

	s.UpdateLocation("alice", 1, 2)
	alice := connect(t, s, "alice")
	bob := connect(t, s, "bob")
	s.TriggerSOS(context.Background(), "alice", "contact@x.com", "1,2")
	drain(alice)
	drain(bob)

	s.DeclineSOS("bob", "alice")

	require.Empty(t, drain(alice))
	require.Empty(t, drain(bob))

	loc, _ := s.Location("alice")
	require.True(t, loc.SosActive, "decline must not clear the flag")
}
