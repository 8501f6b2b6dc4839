package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/internal/session"
)

var ErrBroadcastFull = errors.New("feed: broadcast channel full")

// ConnectionManager keeps the WebSocket connections of every watched match and fans
// snapshots out to them. It implements session.Publisher.
type ConnectionManager struct {
	matchConnections map[int]map[*Connection]bool
	latest           map[int]session.Snapshot
	mu               sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan broadcastMessage
}

// Connection is one overlay client watching a match.
type Connection struct {
	ID      string
	MatchID int
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	MatchID int
	Event   *Event
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// overlays are served from arbitrary local origins
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		matchConnections: make(map[int]map[*Connection]bool),
		latest:           make(map[int]session.Snapshot),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 256),
	}
}

// Start processes broadcasts until ctx is done.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("feed connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("feed connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Publish stores snap as the latest state of its match and queues it for broadcast.
// A full queue drops the message; the next snapshot supersedes it anyway.
func (cm *ConnectionManager) Publish(_ context.Context, snap session.Snapshot) error {
	cm.mu.Lock()
	cm.latest[snap.MatchID] = snap
	cm.mu.Unlock()

	select {
	case cm.broadcastCh <- broadcastMessage{MatchID: snap.MatchID, Event: newStateEvent(snap)}:
		return nil
	default:
		log.Warn().Int("match_id", snap.MatchID).Msg("broadcast channel full, dropping snapshot")
		return ErrBroadcastFull
	}
}

// Latest returns the last snapshot published for matchID.
func (cm *ConnectionManager) Latest(matchID int) (session.Snapshot, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	snap, ok := cm.latest[matchID]
	return snap, ok
}

// UpgradeConnection upgrades the request and registers it for matchID. The client
// first receives a welcome message and then the latest snapshot, if any.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, matchID int) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		MatchID:     matchID,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		Manager:     cm,
		ConnectedAt: now,
	}

	welcome, err := json.Marshal(&Event{
		Type:         EventWelcome,
		MatchID:      matchID,
		ConnectionID: connection.ID,
		Timestamp:    now.UTC(),
	})
	if err == nil {
		connection.Send <- welcome
	}
	if snap, ok := cm.Latest(matchID); ok {
		if data, err := json.Marshal(newStateEvent(snap)); err == nil {
			connection.Send <- data
		}
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Int("match_id", matchID).
		Msg("feed connection established")
	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.matchConnections[conn.MatchID] == nil {
		cm.matchConnections[conn.MatchID] = make(map[*Connection]bool)
	}
	cm.matchConnections[conn.MatchID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("match_id", conn.MatchID).
		Int("total_connections", len(cm.matchConnections[conn.MatchID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.matchConnections[conn.MatchID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(cm.matchConnections, conn.MatchID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Int("match_id", conn.MatchID).
		Msg("feed connection closed")
}

func (cm *ConnectionManager) handleBroadcast(message broadcastMessage) {
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.matchConnections[message.MatchID]))
	for conn := range cm.matchConnections[message.MatchID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal feed event")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			log.Warn().Str("connection_id", conn.ID).Msg("send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Int("match_id", message.MatchID).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// ConnectionStats summarizes open connections.
type ConnectionStats struct {
	TotalConnections int            `json:"totalConnections"`
	ActiveMatches    int            `json:"activeMatches"`
	PerMatch         map[string]int `json:"perMatch"`
}

func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveMatches: len(cm.matchConnections),
		PerMatch:      make(map[string]int, len(cm.matchConnections)),
	}
	for matchID, connections := range cm.matchConnections {
		stats.TotalConnections += len(connections)
		stats.PerMatch[fmt.Sprint(matchID)] = len(connections)
	}
	return stats
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("failed to write feed message")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump only keeps the read deadline fresh; overlays never send commands.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("connection_id", c.ID).Msg("unexpected feed close")
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
