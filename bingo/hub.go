package bingo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultSendBuffer = 64

// Hub is the single point through which every client event and periodic
// sweep passes. Handling, state changes and enqueueing of the resulting
// messages all happen under one lock, so each room sees a strict order of
// events and its broadcasts reach every member in that same order.
type Hub struct {
	mu sync.Mutex

	reg     *Registry
	limiter *Limiter
	clients map[string]chan Message

	sendBuffer int

	log zerolog.Logger
}

func NewHub(reg *Registry, limiter *Limiter, log zerolog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	return &Hub{
		reg:        reg,
		limiter:    limiter,
		clients:    make(map[string]chan Message),
		sendBuffer: sendBuffer,
		log:        log,
	}
}

// Connect registers a new client and returns its id and outbound queue.
// The queue is closed when the client is disconnected or dropped.
func (h *Hub) Connect() (string, <-chan Message) {
	id := uuid.NewString()
	send := make(chan Message, h.sendBuffer)

	h.mu.Lock()
	h.clients[id] = send
	h.mu.Unlock()

	h.log.Info().Str("conn", id).Msg("client connected")

	return id, send
}

// Disconnect removes a client and runs it through the normal leave path.
// Calling it for an unknown or already removed id does nothing.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.removeLocked(id) {
		return
	}
	h.leaveLocked(id)
}

func (h *Hub) removeLocked(id string) bool {
	send, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(send)
	return true
}

func (h *Hub) leaveLocked(id string) {
	h.limiter.Forget(id)
	h.deliverLocked(h.reg.Leave(id))

	h.log.Info().Str("conn", id).Msg("client disconnected")
}

// Dispatch handles one raw frame from client id. Frames that don't decode
// to a known event are ignored.
func (h *Hub) Dispatch(id string, frame []byte) {
	req, err := DecodeRequest(frame)
	if err != nil {
		h.log.Debug().Err(err).Str("conn", id).Msg("ignoring frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[id]; !ok {
		return
	}

	if !h.limiter.Allow(id, req.Event()) {
		h.log.Info().Str("conn", id).Str("event", req.Event()).Msg("rate limited")
		h.deliverLocked(Reject(id, req.Event(), LimitError(req.Event())))
		return
	}

	h.deliverLocked(h.reg.Handle(id, req))
}

// deliverLocked enqueues each message for its recipients without blocking.
// A client whose queue is full is dropped and then leaves its rooms like
// any other disconnect.
func (h *Hub) deliverLocked(out []Outbound) {
	var dropped []string

	for _, o := range out {
		for _, id := range o.To {
			send, ok := h.clients[id]
			if !ok {
				continue
			}

			select {
			case send <- o.Message:
			default:
				h.log.Error().Str("conn", id).Str("event", o.Message.Event).Msg("send queue full, dropping client")
				h.removeLocked(id)
				dropped = append(dropped, id)
			}
		}
	}

	for _, id := range dropped {
		h.leaveLocked(id)
	}
}

// Sweep runs one room sweep and delivers whatever it produced.
func (h *Hub) Sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliverLocked(h.reg.Sweep())
}

// SweepLimits discards idle rate limit buckets.
func (h *Hub) SweepLimits() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := h.limiter.Sweep(); n > 0 {
		h.log.Debug().Int("buckets", n).Msg("rate limit buckets removed")
	}
}

// Rooms is the number of live rooms.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.reg.Len()
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Run drives the periodic sweeps until ctx is cancelled, then closes every
// client queue so their writers shut down.
func (h *Hub) Run(ctx context.Context, sweepEvery, gcEvery time.Duration) {
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()

	gc := time.NewTicker(gcEvery)
	defer gc.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-sweep.C:
			h.Sweep()
		case <-gc.C:
			h.SweepLimits()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.clients {
		h.removeLocked(id)
	}
}
