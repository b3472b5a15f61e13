// Package capture accepts motion data from capture clients over WebSocket
// and runs one relay session per connection.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/hub"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
	"github.com/teslashibe/go-wekbridge/pkg/protocol"
	"github.com/teslashibe/go-wekbridge/pkg/session"
	"github.com/teslashibe/go-wekbridge/pkg/wekinator"
)

var (
	// ErrSessionNotFound is returned for an unknown session ID
	ErrSessionNotFound = errors.New("capture: session not connected")
	// ErrSessionExists is returned when a second client claims a connected ID
	ErrSessionExists = errors.New("capture: session already connected")
)

// Config configures the capture server
type Config struct {
	// Session is applied to every new connection
	Session session.Config

	// AutoStart starts tracking as soon as a client connects
	AutoStart bool
}

// DefaultConfig returns the default capture configuration
func DefaultConfig() Config {
	return Config{
		Session:   session.DefaultConfig(),
		AutoStart: true,
	}
}

// Connection is a connected capture client and its session
type Connection struct {
	ID        string
	Conn      *websocket.Conn
	Session   *session.Session
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send writes a message to the client
func (c *Connection) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.LastSeen = time.Now()
	c.mu.Unlock()
}

// Server manages capture connections
type Server struct {
	config  Config
	sink    session.Sink
	monitor *hub.Hub
	log     *slog.Logger

	mu    sync.RWMutex
	conns map[string]*Connection

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	rejected         atomic.Uint64
}

// NewServer creates a capture server that relays every session to sink.
// monitor may be nil.
func NewServer(cfg Config, sink session.Sink, monitor *hub.Hub) (*Server, error) {
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("capture: sink is required")
	}
	return &Server{
		config:  cfg,
		sink:    sink,
		monitor: monitor,
		log:     log.With("component", "capture"),
		conns:   make(map[string]*Connection),
	}, nil
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (s *Server) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/capture", websocket.New(s.handleCapture))
	app.Get("/ws/capture/:id", websocket.New(s.handleCapture))

	if s.monitor != nil {
		app.Get("/ws/monitor", s.monitor.Handler())
	}
}

// handleCapture serves one capture client for the life of its connection
func (s *Server) handleCapture(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	conn, err := s.open(id, c)
	if err != nil {
		s.rejected.Add(1)
		s.log.Warn("capture rejected", "session", id, "error", err)
		if msg, err2 := protocol.NewErrorMessage("", err); err2 == nil {
			if data, err2 := msg.Bytes(); err2 == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.close(conn)
	}()

	if s.config.AutoStart {
		if err := conn.Session.Start(ctx); err != nil {
			s.log.Warn("auto start failed", "session", id, "error", err)
		}
	}
	s.ack(conn, protocol.TypeStart)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			s.log.Debug("capture read ended", "session", id, "error", err)
			return
		}

		conn.touch()
		s.messagesReceived.Add(1)
		s.handleMessage(ctx, conn, data)
	}
}

// open creates and registers the session for a new connection
func (s *Server) open(id string, c *websocket.Conn) (*Connection, error) {
	sess, err := session.New(id, s.config.Session, s.sink)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	conn := &Connection{
		ID:        id,
		Conn:      c,
		Session:   sess,
		Connected: now,
		LastSeen:  now,
	}
	sess.OnFrame = s.frameObserver()
	sess.OnClear = s.clearObserver(conn)

	s.mu.Lock()
	if _, ok := s.conns[id]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	s.conns[id] = conn
	count := len(s.conns)
	s.mu.Unlock()

	s.log.Info("capture connected", "session", id, "total", count)
	s.publish(hub.Event{Type: hub.SessionEvent, SessionID: id, State: "connected"})
	return conn, nil
}

// close stops the session and unregisters the connection
func (s *Server) close(conn *Connection) {
	if err := conn.Session.Stop(); err != nil {
		s.log.Warn("stop session", "session", conn.ID, "error", err)
	}

	s.mu.Lock()
	delete(s.conns, conn.ID)
	count := len(s.conns)
	s.mu.Unlock()

	s.log.Info("capture disconnected", "session", conn.ID, "total", count)
	s.publish(hub.Event{Type: hub.SessionEvent, SessionID: conn.ID, State: "disconnected"})
}

func (s *Server) frameObserver() func(string, motion.Encoded) {
	return func(id string, e motion.Encoded) {
		addr, _ := wekinator.Address(e.Modality)
		s.publish(hub.Event{
			Type:      hub.FrameEvent,
			SessionID: id,
			Modality:  e.Modality,
			Address:   addr,
			Values:    e.Values,
		})
	}
}

func (s *Server) clearObserver(conn *Connection) func(string, motion.Modality) {
	return func(id string, m motion.Modality) {
		if msg, err := protocol.NewClearMessage(m); err == nil {
			s.send(conn, msg)
		}
		s.publish(hub.Event{Type: hub.ClearEvent, SessionID: id, Modality: m})
	}
}

func (s *Server) publish(ev hub.Event) {
	if s.monitor != nil {
		s.monitor.Broadcast(ev)
	}
}

// handleMessage dispatches one inbound message to the connection's session
func (s *Server) handleMessage(ctx context.Context, conn *Connection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.log.Debug("parse error", "session", conn.ID, "error", err)
		s.reject(conn, "", err)
		return
	}

	sess := conn.Session

	switch msg.Type {
	case protocol.TypeFaceData:
		var fd protocol.FaceData
		if s.decode(conn, msg, &fd) {
			s.record(conn, msg.Type)(sess.PushFrame(ctx, fd.Frame()))
		}

	case protocol.TypeBodyData:
		var bd protocol.BodyData
		if s.decode(conn, msg, &bd) {
			s.record(conn, msg.Type)(sess.PushBody(ctx, bd.Input()))
		}

	case protocol.TypeOrientationData:
		var od protocol.OrientationData
		if s.decode(conn, msg, &od) {
			s.record(conn, msg.Type)(sess.PushFrame(ctx, od.Frame()))
		}

	case protocol.TypeBodyPose:
		var bp protocol.BodyPoseData
		if s.decode(conn, msg, &bp) {
			s.record(conn, msg.Type)(sess.PushBody(ctx, bp.Input()))
		}

	case protocol.TypeFacePose:
		var fp protocol.FacePoseData
		if s.decode(conn, msg, &fp) {
			s.record(conn, msg.Type)(sess.PushFaces(ctx, fp.Input()))
		}

	case protocol.TypeDeviceOrientation:
		var do protocol.DeviceOrientationData
		if s.decode(conn, msg, &do) {
			s.record(conn, msg.Type)(sess.PushOrientation(ctx, do.Orientation()))
		}

	case protocol.TypeStart:
		if err := sess.Start(ctx); err != nil {
			s.reject(conn, msg.Type, err)
			return
		}
		s.ack(conn, msg.Type)

	case protocol.TypeStop:
		if err := sess.Stop(); err != nil {
			s.reject(conn, msg.Type, err)
			return
		}
		s.ack(conn, msg.Type)

	case protocol.TypeSmoothing:
		var sd protocol.SmoothingData
		if !s.decode(conn, msg, &sd) {
			return
		}
		if err := sess.SetSmoothing(sd.Depth); err != nil {
			s.reject(conn, msg.Type, err)
			return
		}
		s.ack(conn, msg.Type)

	case protocol.TypePing:
		if pong, err := protocol.NewPongMessage(msg.Timestamp, time.Now().UnixMilli()); err == nil {
			s.send(conn, pong)
		}

	default:
		s.reject(conn, msg.Type, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// decode parses message data, replying with an error when it is malformed
func (s *Server) decode(conn *Connection, msg *protocol.Message, v interface{}) bool {
	if err := msg.ParseData(v); err != nil {
		s.reject(conn, msg.Type, err)
		return false
	}
	return true
}

// record logs the outcome of a pushed pass. Data messages are not
// acknowledged; pushes while stopped are ignored.
func (s *Server) record(conn *Connection, t protocol.MessageType) func(session.Result, error) {
	return func(res session.Result, err error) {
		switch {
		case errors.Is(err, session.ErrNotTracking):
			s.log.Debug("data while stopped", "session", conn.ID, "type", t)
		case err != nil:
			s.log.Debug("pass failed", "session", conn.ID, "type", t, "result", res.String(), "error", err)
		}
	}
}

func (s *Server) ack(conn *Connection, t protocol.MessageType) {
	msg, err := protocol.NewAckMessage(t, conn.ID, conn.Session.IsTracking(), conn.Session.Depth())
	if err != nil {
		return
	}
	s.send(conn, msg)
}

func (s *Server) reject(conn *Connection, t protocol.MessageType, cause error) {
	s.rejected.Add(1)
	msg, err := protocol.NewErrorMessage(t, cause)
	if err != nil {
		return
	}
	s.send(conn, msg)
}

func (s *Server) send(conn *Connection, msg *protocol.Message) {
	s.messagesSent.Add(1)
	if err := conn.Send(msg); err != nil {
		s.log.Debug("send failed", "session", conn.ID, "type", msg.Type, "error", err)
	}
}

// GetSession returns a connected session by ID
func (s *Server) GetSession(id string) (*session.Session, error) {
	conn, err := s.connection(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, id)
	}
	return conn.Session, nil
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Stats contains capture server statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	Rejected         uint64 `json:"rejected"`
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		SessionCount:     s.SessionCount(),
		MessagesReceived: s.messagesReceived.Load(),
		MessagesSent:     s.messagesSent.Load(),
		Rejected:         s.rejected.Load(),
	}
}

// SessionInfo describes a connected session
type SessionInfo struct {
	ID        string        `json:"id"`
	Connected time.Time     `json:"connected"`
	LastSeen  time.Time     `json:"last_seen"`
	Tracking  bool          `json:"tracking"`
	Depth     int           `json:"depth"`
	Stats     session.Stats `json:"stats"`
}

func (c *Connection) info() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SessionInfo{
		ID:        c.ID,
		Connected: c.Connected,
		LastSeen:  c.LastSeen,
		Tracking:  c.Session.IsTracking(),
		Depth:     c.Session.Depth(),
		Stats:     c.Session.GetStats(),
	}
}

// GetSessionInfos returns info about all connected sessions
func (s *Server) GetSessionInfos() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.conns))
	for _, c := range s.conns {
		infos = append(infos, c.info())
	}
	return infos
}
