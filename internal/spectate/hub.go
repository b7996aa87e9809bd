// Package spectate streams game frames to read-only websocket clients.
// Hands are never sent.
package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/tuno/internal/render"
)

const writeTimeout = 5 * time.Second

// Msg is the envelope of every message sent to a spectator.
type Msg struct {
	T string `json:"t"`
	M any    `json:"m,omitempty"`
}

// PublicFrame is the part of a frame anyone may see.
type PublicFrame struct {
	GameID      string         `json:"game_id"`
	Turn        int            `json:"turn"`
	Current     string         `json:"current,omitempty"`
	Order       []string       `json:"order"`
	Top         string         `json:"top,omitempty"`
	DrawPile    int            `json:"draw_pile"`
	DiscardPile int            `json:"discard_pile"`
	HandSizes   map[string]int `json:"hand_sizes"`
	Alerts      []string       `json:"alerts"`
	Winner      string         `json:"winner,omitempty"`
}

// Public strips private fields from f.
func Public(f render.Frame) PublicFrame {
	p := PublicFrame{
		GameID:      f.GameID,
		Turn:        f.Turn,
		Current:     f.Current,
		Order:       f.Order,
		DrawPile:    f.DrawPile,
		DiscardPile: f.DiscardPile,
		HandSizes:   f.HandSizes,
		Alerts:      make([]string, len(f.Alerts)),
		Winner:      f.Winner,
	}
	if f.Top != nil {
		p.Top = f.Top.String()
	}
	for i, a := range f.Alerts {
		p.Alerts[i] = a.Text
	}
	return p
}

type client struct {
	id   uuid.UUID
	send chan []byte
}

// Hub accepts spectator connections and broadcasts every rendered frame to
// them. Slow clients miss frames rather than block the game.
type Hub struct {
	origins []string
	log     logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub returns a hub accepting browser connections from the given origin
// patterns. Non-browser clients send no Origin and are always accepted.
func NewHub(origins []string, log logrus.FieldLogger) *Hub {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		origins: origins,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		clients: map[*client]struct{}{},
	}
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.WithError(err).Warn("spectate: accept failed")
		return
	}
	defer c.CloseNow()

	// Spectators never send; CloseRead handles pings and close frames.
	ctx := c.CloseRead(r.Context())
	cl := &client{id: uuid.New(), send: make(chan []byte, 16)}
	h.register(cl)
	defer h.unregister(cl)
	log := h.log.WithField("spectator", cl.id)
	log.Info("spectate: client connected")

	for {
		select {
		case <-ctx.Done():
			log.Info("spectate: client disconnected")
			return
		case <-h.ctx.Done():
			c.Close(websocket.StatusGoingAway, "game over")
			return
		case msg := <-cl.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				log.WithError(err).Debug("spectate: write failed")
				return
			}
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = struct{}{}
	if h.last != nil {
		cl.send <- h.last
	}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl)
}

// Render broadcasts the public part of f.
func (h *Hub) Render(f render.Frame) error {
	b, err := json.Marshal(Msg{T: "frame", M: Public(f)})
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			h.log.WithField("spectator", cl.id).Debug("spectate: dropped frame for slow client")
		}
	}
	return nil
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every spectator.
func (h *Hub) Close() { h.cancel() }
