package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the client.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the client.
	pongWait = 60 * time.Second

	// Send pings to client with this period. Must be less than pongWait.
	pingPeriod = 15 * time.Second

	// Maximum message size allowed from client.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// frame is an inbound client message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// saverVictim is the payload of accept-sos and decline-sos frames.
type saverVictim struct {
	Saver  string `json:"saver"`
	Victim string `json:"victim"`
}

// check if the request is for websockets
func IsWebSocket(r *http.Request) bool {
	contains := func(key, val string) bool {
		vv := strings.Split(r.Header.Get(key), ",")
		for _, v := range vv {
			if val == strings.ToLower(strings.TrimSpace(v)) {
				return true
			}
		}
		return false
	}

	if contains("Connection", "upgrade") && contains("Upgrade", "websocket") {
		return true
	}

	return false
}

// ServeWebSocket upgrades the request and runs the session until the client
// goes away. Presence cleanup happens here, not in the registry callers.
func (s *Server) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sess := NewSession()
	s.Connect(sess)

	st := &stream{
		ctx:     r.Context(),
		conn:    conn,
		server:  s,
		session: sess,
	}

	st.run()
}

type stream struct {
	// request context
	ctx context.Context
	// the websocket connection.
	conn *websocket.Conn
	// the owning server
	server *Server
	// this connection's session
	session *Session
}

func (st *stream) run() {
	defer func() {
		st.conn.Close()
		st.server.Disconnect(st.session.Id)
	}()

	// to cancel everything
	stopCtx, cancel := context.WithCancel(context.Background())

	wg := sync.WaitGroup{}
	wg.Add(2)

	// establish the loops
	go st.serverToClientLoop(cancel, &wg, stopCtx)
	go st.clientToServerLoop(cancel, &wg, stopCtx)
	wg.Wait()
}

func (st *stream) clientToServerLoop(cancel context.CancelFunc, wg *sync.WaitGroup, stopCtx context.Context) {
	defer func() {
		cancel()
		wg.Done()
	}()

	st.conn.SetReadLimit(maxMessageSize)
	st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error { st.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-stopCtx.Done():
			return
		default:
		}

		_, msg, err := st.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[socket] read error: %v", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			log.Printf("[socket] bad frame from %s: %v", st.session.Id, err)
			continue
		}

		st.server.handleFrame(st.session, &f)
	}
}

func (st *stream) serverToClientLoop(cancel context.CancelFunc, wg *sync.WaitGroup, stopCtx context.Context) {
	defer func() {
		st.conn.Close()
		cancel()
		wg.Done()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stopCtx.Done():
			return
		case <-st.ctx.Done():
			return
		case <-st.session.Kill:
			st.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := st.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev := <-st.session.Events:
			st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := st.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			b, _ := json.Marshal(ev)
			if _, err := w.Write(b); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		}
	}
}

// handleFrame routes an inbound client event.
func (s *Server) handleFrame(sess *Session, f *frame) {
	switch f.Event {
	case "register-user":
		var username string
		if err := json.Unmarshal(f.Data, &username); err != nil || len(username) == 0 {
			return
		}
		s.Register(username, sess.Id)
	case "accept-sos":
		var sv saverVictim
		if err := json.Unmarshal(f.Data, &sv); err != nil {
			return
		}
		s.AcceptSOS(sv.Saver, sv.Victim)
	case "decline-sos":
		var sv saverVictim
		if err := json.Unmarshal(f.Data, &sv); err != nil {
			return
		}
		s.DeclineSOS(sv.Saver, sv.Victim)
	default:
		log.Printf("[socket] unknown event %q from %s", f.Event, sess.Id)
	}
}
