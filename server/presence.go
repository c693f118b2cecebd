package server

import "log"

// Connect tracks a freshly opened session. The session carries no username
// until the client registers it.
func (s *Server) Connect(sess *Session) {
	s.mtx.Lock()
	s.sessions[sess.Id] = sess
	s.mtx.Unlock()

	log.Printf("[presence] session connected: %s", sess.Id)
}

// Register binds a session to a username. Registering the same pair twice
// is a no-op. A session re-registered under a different username keeps only
// the latest binding in the reverse index.
func (s *Server) Register(username, sessionID string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	set, ok := s.presence[username]
	if !ok {
		set = make(map[string]bool)
		s.presence[username] = set
	}
	if set[sessionID] {
		return
	}

	set[sessionID] = true
	s.owners[sessionID] = username

	log.Printf("[presence] registered %s -> %d session(s)", username, len(set))
}

// Disconnect removes a session from whichever user holds it and drops the
// user from presence when it was their last one. Unknown sessions are
// ignored. The location record is untouched.
func (s *Server) Disconnect(sessionID string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.sessions, sessionID)

	username, ok := s.owners[sessionID]
	if !ok {
		return
	}
	delete(s.owners, sessionID)

	set := s.presence[username]
	delete(set, sessionID)
	if len(set) == 0 {
		delete(s.presence, username)
	}

	log.Printf("[presence] session disconnected: %s (%s)", username, sessionID)
}

// ConnectionsOf returns the open session ids for a username, possibly none.
func (s *Server) ConnectionsOf(username string) []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var ids []string
	for id := range s.presence[username] {
		ids = append(ids, id)
	}
	return ids
}

// Online returns every username with at least one open session.
func (s *Server) Online() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var users []string
	for username := range s.presence {
		users = append(users, username)
	}
	return users
}
