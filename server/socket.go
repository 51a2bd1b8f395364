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
	maxFrameSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// IsWebSocket checks if the request asks for a websocket upgrade.
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

	return contains("Connection", "upgrade") && contains("Upgrade", "websocket")
}

// ServeSocket upgrades the request and pumps the connection until it dies.
// The session is registered with the relay for the connection's lifetime;
// a read error or client close triggers disconnect cleanup.
func ServeSocket(w http.ResponseWriter, r *http.Request, relay *Relay, session *Session) {
	var rspHdr http.Header
	// Sec-WebSocket-Protocol may carry auth tokens, echo it back
	if prots := r.Header.Values("Sec-WebSocket-Protocol"); len(prots) > 0 {
		rspHdr = http.Header{}
		for _, p := range prots {
			rspHdr.Add("Sec-WebSocket-Protocol", p)
		}
	}

	conn, err := upgrader.Upgrade(w, r, rspHdr)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	relay.Connect(session)
	defer relay.Disconnect(session)

	s := &stream{
		ctx:     r.Context(),
		conn:    conn,
		relay:   relay,
		session: session,
	}
	s.run()
}

type stream struct {
	// request context
	ctx context.Context
	// the websocket connection
	conn *websocket.Conn
	// the gateway fed by the read loop
	relay *Relay
	// the connection's session
	session *Session
}

func (s *stream) run() {
	defer s.conn.Close()

	stopCtx, cancel := context.WithCancel(context.Background())

	wg := sync.WaitGroup{}
	wg.Add(2)

	go s.writeLoop(cancel, &wg, stopCtx)
	go s.readLoop(cancel, &wg, stopCtx)
	wg.Wait()
}

func (s *stream) readLoop(cancel context.CancelFunc, wg *sync.WaitGroup, stopCtx context.Context) {
	defer func() {
		cancel()
		wg.Done()
	}()

	s.conn.SetReadLimit(maxFrameSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-stopCtx.Done():
			return
		default:
		}

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[socket] read: %v", err)
			}
			return
		}

		s.relay.HandleEvent(s.session, msg)
	}
}

func (s *stream) writeLoop(cancel context.CancelFunc, wg *sync.WaitGroup, stopCtx context.Context) {
	defer func() {
		s.conn.Close()
		cancel()
		wg.Done()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stopCtx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-s.session.Kill:
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case e := <-s.session.Events:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			b, _ := json.Marshal(e)
			if _, err := w.Write(b); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		}
	}
}
