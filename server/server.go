// Package server implements the Citizen Shield presence and SOS server.
//
// Users report their location over HTTP and hold open websocket sessions
// for real-time alerts. When a user triggers an SOS the server emails their
// emergency contact and fans an alert out to every other online user. A
// helper accepting the SOS notifies both parties and resets the alert.
//
// All state is in-memory and owned by a single Server for the process
// lifetime. Nothing survives a restart.
package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// Buffered events per session before sends are dropped.
	sessionBuffer = 16
)

// Location is a user's last reported position plus their SOS flag.
type Location struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	SosActive bool    `json:"sosActive"`
}

// User is a location record together with its owner, as served to peers.
type User struct {
	Username  string  `json:"username"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	SosActive bool    `json:"sosActive"`
}

// Event is a named frame pushed to a session.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Session is one open realtime connection. A user may hold several.
type Session struct {
	Id     string
	Events chan *Event
	Kill   chan bool
}

type Server struct {
	Created int64

	// outbound channel for the emergency contact, nil when disabled
	mailer Mailer

	mtx sync.RWMutex
	// username -> location record, never deleted
	locations map[string]*Location
	// usernames in the order first seen, for stable listing
	order []string
	// username -> set of session ids, entry deleted when empty
	presence map[string]map[string]bool
	// session id -> username, the reverse of presence
	owners map[string]string
	// session id -> open session
	sessions map[string]*Session
}

func New(mailer Mailer) *Server {
	return &Server{
		Created:   time.Now().UnixNano(),
		mailer:    mailer,
		locations: make(map[string]*Location),
		presence:  make(map[string]map[string]bool),
		owners:    make(map[string]string),
		sessions:  make(map[string]*Session),
	}
}

func NewSession() *Session {
	return &Session{
		Id:     uuid.New().String(),
		Events: make(chan *Event, sessionBuffer),
		Kill:   make(chan bool),
	}
}

func NewEvent(name string, data interface{}) *Event {
	return &Event{
		Event: name,
		Data:  data,
	}
}
