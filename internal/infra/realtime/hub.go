package realtime

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	appscans "github.com/realscan/realscan/internal/application/scans"
	scansdomain "github.com/realscan/realscan/internal/domain/scans"
)

// ScanService is the slice of the scan service the hub dispatches
// inbound events to.
type ScanService interface {
	Started(ctx context.Context, subjectID string)
	Completed(ctx context.Context, cmd appscans.CompletedCommand) (*scansdomain.ScanResult, error)
}

// Hub fans events out to connected dashboard sessions. All session
// bookkeeping (register, unregister, admin-room membership) happens on
// the hub goroutine, so no lock guards the session set. Delivery is
// at-most-once: a session not connected at broadcast time never sees
// the event, and a session whose send buffer is full is dropped
// without affecting the others.
type Hub struct {
	register   chan *session
	unregister chan *session
	joinAdmin  chan *session
	broadcast  chan outbound

	// done is closed when Run exits, so sessions never block on
	// register/unregister against a hub that is gone.
	done chan struct{}

	sessions map[*session]bool
	svc      ScanService
	logger   *log.Logger
	count    atomic.Int64
}

type outbound struct {
	payload   []byte
	adminOnly bool
}

func NewHub(svc ScanService, logger *log.Logger) *Hub {
	return &Hub{
		register:   make(chan *session),
		unregister: make(chan *session),
		joinAdmin:  make(chan *session),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
		sessions:   make(map[*session]bool),
		svc:        svc,
		logger:     logger,
	}
}

// Run owns the session set. It exits when ctx is cancelled, closing
// every remaining session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for s := range h.sessions {
				h.drop(s)
			}
			close(h.done)
			return

		case s := <-h.register:
			h.sessions[s] = true
			h.count.Store(int64(len(h.sessions)))

		case s := <-h.unregister:
			if h.sessions[s] {
				h.drop(s)
			}

		case s := <-h.joinAdmin:
			if h.sessions[s] {
				s.admin = true
			}

		case msg := <-h.broadcast:
			for s := range h.sessions {
				if msg.adminOnly && !s.admin {
					continue
				}
				select {
				case s.send <- msg.payload:
				default:
					// Slow consumer: drop the session, not the event.
					h.drop(s)
				}
			}
		}
	}
}

func (h *Hub) drop(s *session) {
	delete(h.sessions, s)
	close(s.send)
	h.count.Store(int64(len(h.sessions)))
}

// SessionCount reports how many sessions are currently connected.
func (h *Hub) SessionCount() int64 { return h.count.Load() }

// Activity broadcasts a scan-activity event to every connected
// session. Implements the scan service's Notifier port.
func (h *Hub) Activity(message, typ string) {
	h.emit(message, typ, false)
}

// AdminActivity broadcasts a scan-activity event to the admin room
// only (sessions that sent join-admin).
func (h *Hub) AdminActivity(message, typ string) {
	h.emit(message, typ, true)
}

func (h *Hub) emit(message, typ string, adminOnly bool) {
	payload, err := marshalEvent(EventScanActivity, ActivityData{
		Message:   message,
		Timestamp: time.Now().UTC(),
		Type:      typ,
	})
	if err != nil {
		h.logger.Printf("realtime marshal error: %v", err)
		return
	}
	// Fire-and-forget: if the hub's queue is full the event is lost,
	// never buffered or retried.
	select {
	case h.broadcast <- outbound{payload: payload, adminOnly: adminOnly}:
	default:
		h.logger.Printf("realtime broadcast queue full, event dropped")
	}
}
