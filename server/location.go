package server

// UpdateLocation stores a user's position. The first update for a username
// creates their record with the SOS flag down; later updates overwrite the
// coordinates and leave the flag alone. Records are never removed, a user
// who disconnects keeps their last known position.
func (s *Server) UpdateLocation(username string, lat, lon float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	loc, ok := s.locations[username]
	if !ok {
		s.locations[username] = &Location{Lat: lat, Lon: lon}
		s.order = append(s.order, username)
		return
	}

	loc.Lat = lat
	loc.Lon = lon
}

// Location returns a snapshot of a user's record.
func (s *Server) Location(username string) (Location, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	loc, ok := s.locations[username]
	if !ok {
		return Location{}, false
	}
	return *loc, true
}

// ListOthers returns every known user except the caller, in the order they
// were first seen. No distance filtering, no pagination.
func (s *Server) ListOthers(exclude string) []User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	users := make([]User, 0, len(s.order))

	for _, username := range s.order {
		if username == exclude {
			continue
		}
		loc := s.locations[username]
		users = append(users, User{
			Username:  username,
			Lat:       loc.Lat,
			Lon:       loc.Lon,
			SosActive: loc.SosActive,
		})
	}

	return users
}
