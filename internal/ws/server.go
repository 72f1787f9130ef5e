package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"flappy-casino/internal/config"
	"flappy-casino/internal/game"
	"flappy-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const maxMessageBytes = 4096

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server accepts websocket connections and relays them to the table
// session. It is the session's Notifier.
type Server struct {
	session    *TableSession
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.Mutex
	clients map[string]*Client
}

func NewServer(cfg config.ServerConfig, table config.TableConfig, l game.Ledger, r game.HandRanker, clock quartz.Clock) *Server {
	s := &Server{
		sendBuffer: cfg.SendBuffer,
		clients:    map[string]*Client{},
	}
	if s.sendBuffer <= 0 {
		s.sendBuffer = 32
	}
	origins := cfg.AllowedOrigins
	s.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(origins) == 0 || origin == "" || slices.Contains(origins, origin)
	}}
	s.session = NewTableSession(table, l, r, s, clock)
	return s
}

// Run drives the table session until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.session.Run(ctx)
}

func (s *Server) Session() *TableSession {
	return s.session
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(maxMessageBytes)
	client := &Client{id: store.NewID(), conn: conn, send: make(chan []byte, s.sendBuffer)}
	s.register(client)

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) register(c *Client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	metricConnectionsTotal.Add(1)
	metricConnectionsActive.Add(1)
	log.Debug().Str("conn_id", c.id).Msg("ws_connected")
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
		_ = s.session.post(command{connID: c.id, disconnect: true})
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.session.post(command{connID: c.id, raw: msg}); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
		metricConnectionsActive.Add(-1)
	}
	s.mu.Unlock()
	safeClose(c.send)
	log.Debug().Str("conn_id", c.id).Msg("ws_disconnected")
}

// Send implements game.Notifier. A client whose buffer is full is dropped
// rather than stalling the table.
func (s *Server) Send(connID string, msg any) {
	s.mu.Lock()
	c := s.clients[connID]
	s.mu.Unlock()
	if c == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("conn_id", connID).Msg("ws_marshal_failed")
		return
	}
	if !safeSend(c.send, data) {
		metricSlowClientDrops.Add(1)
		log.Warn().Str("conn_id", connID).Msg("ws_slow_client_dropped")
		_ = c.conn.Close()
	}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = true
		}
	}()
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}
