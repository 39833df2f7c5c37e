// Boulderingo
//
// Rooms of climbers race to complete a line on a shared 5x5 board of
// bouldering challenges. Normal rooms verify claimed lines and rank players
// by time; lock-out rooms have two players claim tiles exclusively until one
// completes a line or a countdown settles it on tile count.
//
// Routes:
// - {prefix}/bingo/ws          WebSocket, JSON {"event", "data"} envelopes
// - {prefix}/bingo/qr/:code    PNG QR code for joining a room

package main

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/Seednode/boulderingo/bingo"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

func newUpgrader(cfg *Config) *websocket.Upgrader {
	allowed := make([]string, 0, len(cfg.allowedOrigins))
	for _, o := range cfg.allowedOrigins {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, strings.ToLower(o))
		}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return slices.Contains(allowed, strings.ToLower(origin))
		},
	}
}

type Client struct {
	conn *websocket.Conn
	id   string
	send <-chan bingo.Message
}

func serveWS(cfg *Config, hub *bingo.Hub, upgrader *websocket.Upgrader) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Error().Err(err).Str("remote", realIP(r)).Msg("upgrade")
			return
		}

		id, send := hub.Connect()
		client := &Client{
			conn: conn,
			id:   id,
			send: send,
		}

		logf(cfg, "WS: Client %s connected from %s", id, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(hub *bingo.Hub) {
	defer func() {
		hub.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		hub.Dispatch(c.id, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// joinURL is the landing page URL that pre-fills code, respecting TLS and
// X-Forwarded-Proto.
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}
	return u.String()
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		code, err := bingo.NormalizeRoomCode(ps.ByName("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		const qrSize = 320
		png, err := qrcode.Encode(joinURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code for %s (%s) to %s in %s",
			code,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// registerBingoGame builds the game hub, starts its sweeps under ctx, and
// mounts the game routes.
func registerBingoGame(ctx context.Context, cfg *Config, mux *httprouter.Router, errs chan<- error) *bingo.Hub {
	reg := bingo.NewRegistry(bingo.Options{
		SessionTimeout: cfg.sessionTimeout,
		Countdown:      cfg.countdown,
		Log:            cfg.log.With().Str("component", "registry").Logger(),
	})
	limiter := bingo.NewLimiter(bingo.DefaultLimits, nil)
	hub := bingo.NewHub(reg, limiter, cfg.log.With().Str("component", "hub").Logger(), cfg.sendBuffer)

	go hub.Run(ctx, cfg.sweepInterval, cfg.rateLimitGCInterval)

	mux.GET(cfg.prefix+"/bingo/ws", serveWS(cfg, hub, newUpgrader(cfg)))
	mux.GET(cfg.prefix+"/bingo/qr/:code", serveQR(cfg, errs))

	return hub
}
