package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UpdateLocationHandler stores a user's reported position.
//
// Zero coordinates count as missing, like an absent field.
func (s *Server) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string  `json:"username"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Missing fields", 400)
		return
	}

	if len(req.Username) == 0 || req.Lat == 0 || req.Lon == 0 {
		http.Error(w, "Missing fields", 400)
		return
	}

	s.UpdateLocation(req.Username, req.Lat, req.Lon)

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "Location updated")
}

// SendSOSHandler raises an SOS: flag up, contact emailed, peers alerted.
// The acknowledgement does not depend on the mail outcome.
func (s *Server) SendSOSHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username       string `json:"username"`
		EmergencyEmail string `json:"emergencyEmail"`
		Location       string `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Missing fields", 400)
		return
	}

	if len(req.Username) == 0 || len(req.EmergencyEmail) == 0 || len(req.Location) == 0 {
		http.Error(w, "Missing fields", 400)
		return
	}

	s.TriggerSOS(r.Context(), req.Username, req.EmergencyEmail, req.Location)

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "SOS alert sent (email + socket notifications)")
}

// NearbyUsersHandler lists every other known user.
func (s *Server) NearbyUsersHandler(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	username := r.Form.Get("username")

	users := s.ListOthers(username)

	b, _ := json.Marshal(users)
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

// EventsHandler serves the realtime websocket endpoint.
func (s *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	if !IsWebSocket(r) {
		http.Error(w, "Expected websocket connection", 400)
		return
	}

	s.ServeWebSocket(w, r)
}

// HealthHandler reports how many users are known and online.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.mtx.RLock()
	known := len(s.locations)
	online := len(s.presence)
	s.mtx.RUnlock()

	data := map[string]interface{}{
		"status": "ok",
		"users":  known,
		"online": online,
	}

	b, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

func SetHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func WithCors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// set cors origin allow all
		SetHeaders(w, r)

		// if options return immediately
		if r.Method == "OPTIONS" {
			return
		}

		h.ServeHTTP(w, r)
	})
}
