package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
)

// Frame is the envelope exchanged over the socket in both directions.
// Server frames carry Event, Channel and Data. Client frames use Event
// "subscribe" or "unsubscribe" with Channel and, for subscribe, Auth.
type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Auth    string          `json:"auth,omitempty"`
}

// Router coordinates websocket sessions and channel subscriptions.
// It keeps one active Connection per user and fans out channel events to
// every connection subscribed to that channel.
type Router struct {
	mu              sync.RWMutex
	sessions        map[string]*Connection            // sessionID -> connection
	userSessions    map[string]string                 // userID -> sessionID
	channels        map[string]map[string]*Connection // channel -> sessionID -> connection
	sessionChannels map[string]map[string]struct{}    // sessionID -> set of channels
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:        make(map[string]*Connection),
		userSessions:    make(map[string]string),
		channels:        make(map[string]map[string]*Connection),
		sessionChannels: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for the given user. If a previous session exists,
// it is removed and closed after the swap to enforce one active socket per user.
func (r *Router) Attach(conn *Connection) {
	var previous *Connection

	r.mu.Lock()
	if existingID, ok := r.userSessions[conn.UserID]; ok {
		if existing := r.sessions[existingID]; existing != nil {
			previous = existing
			r.detachLocked(existingID)
		}
	}

	r.sessions[conn.ID] = conn
	r.userSessions[conn.UserID] = conn.ID
	r.sessionChannels[conn.ID] = make(map[string]struct{})
	metrics.RealtimeConnections.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection if it is still tracked.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	metrics.RealtimeConnections.Set(float64(len(r.sessions)))
	r.mu.Unlock()
}

// Subscribe adds the connection to channel. It reports false when the
// connection is no longer attached.
func (r *Router) Subscribe(channel string, conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return false
	}

	subs := r.channels[channel]
	if subs == nil {
		subs = make(map[string]*Connection)
		r.channels[channel] = subs
	}
	subs[conn.ID] = conn

	joined := r.sessionChannels[conn.ID]
	if joined == nil {
		joined = make(map[string]struct{})
		r.sessionChannels[conn.ID] = joined
	}
	joined[channel] = struct{}{}
	return true
}

// Unsubscribe removes the connection from channel.
func (r *Router) Unsubscribe(channel string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(channel, conn.ID)
	r.mu.Unlock()
}

// Subscribers returns how many connections currently listen on channel.
func (r *Router) Subscribers(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// Publish wraps payload in a Frame and delivers it to local subscribers of
// channel. Having no subscribers is not an error.
func (r *Router) Publish(_ context.Context, channel, event string, payload []byte) error {
	frame, err := json.Marshal(Frame{Event: event, Channel: channel, Data: payload})
	if err != nil {
		return err
	}
	r.Broadcast(channel, frame)
	return nil
}

// Broadcast writes a pre-encoded frame to all subscribers of channel and
// returns how many accepted it.
func (r *Router) Broadcast(channel string, frame []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, conn := range r.channels[channel] {
		if err := conn.Send(frame); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]string)
	r.channels = make(map[string]map[string]*Connection)
	r.sessionChannels = make(map[string]map[string]struct{})
	metrics.RealtimeConnections.Set(0)
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if current, ok := r.userSessions[conn.UserID]; ok && current == sessionID {
		delete(r.userSessions, conn.UserID)
	}

	for channel := range r.sessionChannels[sessionID] {
		r.leaveLocked(channel, sessionID)
	}
	delete(r.sessionChannels, sessionID)
}

func (r *Router) leaveLocked(channel string, sessionID string) {
	if sessionID == "" {
		return
	}
	subs := r.channels[channel]
	if subs == nil {
		return
	}
	delete(subs, sessionID)
	if len(subs) == 0 {
		delete(r.channels, channel)
	}
	if joined, ok := r.sessionChannels[sessionID]; ok {
		delete(joined, channel)
	}
}
