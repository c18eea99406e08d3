package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	appscans "github.com/realscan/realscan/internal/application/scans"
	"github.com/realscan/realscan/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // scan payloads are small; anything bigger is abuse

	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard and scanner pages may be served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session is one connected dashboard/scanner websocket. The admin flag
// is only touched by the hub goroutine.
type session struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	admin bool
}

// ServeWS upgrades the request and registers the session with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws upgrade error: %v", err)
		return
	}
	s := &session{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- s:
	case <-h.done:
		// Hub already stopped; turn the connection away.
		conn.Close()
		return
	}

	go s.writePump()
	go s.readPump()
}

// readPump reads inbound events until the connection dies. A failure
// here tears down this session only; other sessions are untouched.
func (s *session) readPump() {
	defer func() {
		if r := recover(); r != nil {
			s.hub.logger.Printf("ws session panic recovered: %v", r)
		}
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Printf("ws read error: %v", err)
			}
			return
		}
		s.dispatch(raw)
	}
}

// dispatch handles one inbound envelope. Bad payloads and handler
// errors are logged and swallowed: one misbehaving client must not
// disconnect anyone else or crash the process.
func (s *session) dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.hub.logger.Printf("ws bad envelope: %v", err)
		return
	}

	switch env.Event {
	case EventJoinAdmin:
		s.hub.joinAdmin <- s

	case EventScanStarted:
		var data ScanStartedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.hub.logger.Printf("ws bad %s payload: %v", env.Event, err)
			return
		}
		s.hub.svc.Started(context.Background(), data.SubjectID)

	case EventScanCompleted:
		var data ScanCompletedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.hub.logger.Printf("ws bad %s payload: %v", env.Event, err)
			return
		}
		cmd := appscans.CompletedCommand{
			SubjectID:          data.SubjectID,
			Results:            data.Results,
			OverallWinRate:     data.OverallWinRate,
			TopGame:            data.TopGame,
			TopGameRate:        data.TopGameRate,
			BottomGame:         data.BottomGame,
			BottomGameRate:     data.BottomGameRate,
			Recommendation:     data.Recommendation,
			SuccessProbability: data.SuccessProbability,
			Accuracy:           data.Accuracy,
		}
		if _, err := s.hub.svc.Completed(context.Background(), cmd); err != nil {
			s.hub.logger.Printf("scan-completed handler error: %v", err)
			return
		}
		middleware.IncrementScansRecorded()

	default:
		s.hub.logger.Printf("ws unknown event %q ignored", env.Event)
	}
}

// writePump pushes broadcasts from the hub to the peer and keeps the
// connection alive with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us.
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
