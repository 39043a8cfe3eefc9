// README: WebSocket screen session; one estimate flow per connection.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"gosnap/internal/maps"
	"gosnap/internal/modules/estimate"
)

const (
	sessionReadLimit  = 4096
	sessionWriteWait  = 10 * time.Second
	sessionEgressSize = 16

	// sessionMaxInflight caps concurrent lookups per connection; readLoop
	// stops reading while every slot is taken.
	sessionMaxInflight = 4

	// AutocompleteDebounce is how long a session waits for typing to pause
	// before looking up predictions.
	AutocompleteDebounce = 100 * time.Millisecond
)

type SessionHandler struct {
	estimator estimate.Estimating
	quoter    estimate.Quoter
	places    Autocompleter
	log       *zap.Logger
	upgrader  websocket.Upgrader
}

func NewSessionHandler(estimator estimate.Estimating, quoter estimate.Quoter, places Autocompleter, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{
		estimator: estimator,
		quoter:    quoter,
		places:    places,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// clientMsg is any message a screen sends.
type clientMsg struct {
	Type        string            `json:"type"`
	Pickup      estimate.Endpoint `json:"pickup"`
	Destination estimate.Endpoint `json:"destination"`
	Input       string            `json:"input"`
}

type stateMsg struct {
	Type     string            `json:"type"`
	Snapshot estimate.Snapshot `json:"snapshot"`
}

type predictionsMsg struct {
	Type        string            `json:"type"`
	Input       string            `json:"input"`
	Predictions []maps.Prediction `json:"predictions"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (h *SessionHandler) Serve(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		conn:   conn,
		flow:   estimate.NewFlow(kind, h.estimator, h.quoter, h.log),
		places: h.places,
		log:    h.log.With(zap.String("kind", string(kind)), zap.String("remote", c.ClientIP())),
		egress: make(chan any, sessionEgressSize),
		slots:  semaphore.NewWeighted(sessionMaxInflight),
	}
	s.run(c.Request.Context())
}

type session struct {
	conn   *websocket.Conn
	flow   *estimate.Flow
	places Autocompleter
	log    *zap.Logger
	egress chan any
	slots  *semaphore.Weighted

	mu      sync.Mutex
	pending *time.Timer
	acSeq   uint64
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.flow.OnChange(func(snap estimate.Snapshot) {
		s.send(ctx, stateMsg{Type: "state", Snapshot: snap})
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, cancel)
	}()

	var inflight sync.WaitGroup
	s.readLoop(ctx, &inflight)

	s.stopAutocomplete(&inflight)
	cancel()
	inflight.Wait()
	<-writerDone
	s.log.Debug("session closed")
}

func (s *session) readLoop(ctx context.Context, inflight *sync.WaitGroup) {
	s.conn.SetReadLimit(sessionReadLimit)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("session read failed", zap.Error(err))
			}
			return
		}

		var msg clientMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.send(ctx, errorMsg{Type: "error", Error: "invalid json"})
			continue
		}

		switch msg.Type {
		case "estimate":
			q := estimate.Query{Pickup: msg.Pickup, Destination: msg.Destination}
			if !s.acquire(ctx) {
				return
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				defer s.release()
				s.flow.Request(ctx, q)
			}()
		case "autocomplete":
			s.autocomplete(ctx, inflight, msg.Input)
		default:
			s.send(ctx, errorMsg{Type: "error", Error: "unknown message type"})
		}
	}
}

func (s *session) acquire(ctx context.Context) bool {
	return s.slots.Acquire(ctx, 1) == nil
}

func (s *session) release() { s.slots.Release(1) }

// autocomplete coalesces a burst of keystrokes into one lookup for the
// latest input. Predictions for an input that was superseded are dropped.
func (s *session) autocomplete(ctx context.Context, inflight *sync.WaitGroup, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.Stop() {
		inflight.Done()
	}
	s.acSeq++
	seq := s.acSeq
	inflight.Add(1)
	s.pending = time.AfterFunc(AutocompleteDebounce, func() {
		defer inflight.Done()
		if !s.acquire(ctx) {
			return
		}
		preds := suggest(ctx, s.places, s.log, input)
		s.release()

		s.mu.Lock()
		latest := seq == s.acSeq
		s.mu.Unlock()
		if latest {
			s.send(ctx, predictionsMsg{Type: "predictions", Input: input, Predictions: preds})
		}
	})
}

func (s *session) stopAutocomplete(inflight *sync.WaitGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.Stop() {
		inflight.Done()
	}
	s.pending = nil
}

func (s *session) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(sessionWriteWait))
			// Unblocks readLoop when the parent context ends first.
			_ = s.conn.Close()
			return
		case msg := <-s.egress:
			_ = s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.log.Warn("session write failed", zap.Error(err))
				cancel()
				_ = s.conn.Close()
				return
			}
		}
	}
}

func (s *session) send(ctx context.Context, msg any) {
	select {
	case s.egress <- msg:
	case <-ctx.Done():
	}
}
