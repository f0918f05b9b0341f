// Package stream publishes the frames of a player to websocket clients and
// lets them drive the playback.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/runner"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

const (
	MessageTypeFrame = "frame"
	MessageTypeError = "error"

	// CommandImpulse applies Impulse to Body at its centre of mass
	CommandImpulse runner.Command = "impulse"

	DefaultWriteTimeout = 2 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Message is sent to the clients, a frame or an error
type Message struct {
	Type  string        `json:"type"`
	Frame *runner.Frame `json:"frame,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Command is sent by the clients
type Command struct {
	Cmd     runner.Command `json:"cmd"`
	Body    string         `json:"body,omitempty"`
	Impulse mgl64.Vec3     `json:"impulse"`
}

// Server streams every frame of a player to the connected clients
type Server struct {
	player   *runner.Player
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*SafeWriter]struct{}
}

func NewServer(player *runner.Player, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		player: player,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*SafeWriter]struct{}),
	}
	player.Observe(s.broadcast)
	return s
}

// Handler serves the websocket on /ws and the current frame as JSON on /frame
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	mux.HandleFunc("GET /frame", s.serveFrame)
	return mux
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("stream listening", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.closeClients()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) serveFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.player.Snapshot()); err != nil {
		s.logger.Warn("frame encoding failed", "error", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	writer := NewSafeWriter(conn, DefaultWriteTimeout)
	defer s.disconnect(writer)

	// The current frame goes out and the client joins the broadcast under
	// the same lock, no frame falls in between
	s.mu.Lock()
	frame := s.player.Snapshot()
	err = writer.WriteJSON(Message{Type: MessageTypeFrame, Frame: &frame})
	if err == nil {
		s.clients[writer] = struct{}{}
	}
	s.mu.Unlock()
	if err != nil {
		return
	}
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("client read failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		if err := s.handle(writer, data); err != nil {
			s.logger.Debug("client command rejected", "remote", r.RemoteAddr, "error", err)
			if err := writer.WriteJSON(Message{Type: MessageTypeError, Error: err.Error()}); err != nil {
				return
			}
		}
	}
}

// handle applies a client command. Commands producing a frame answer through
// the broadcast, the others answer the sender with the current frame.
func (s *Server) handle(writer *SafeWriter, data []byte) error {
	var command Command
	if err := json.Unmarshal(data, &command); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	switch command.Cmd {
	case runner.CommandStep, runner.CommandStop, runner.CommandReset:
		return s.player.Handle(command.Cmd)

	case CommandImpulse:
		var applied bool
		s.player.Do(func(engine *ogcsim.Engine) {
			applied = engine.ApplyImpulse(command.Body, command.Impulse, centreOf(engine, command.Body))
		})
		if !applied {
			return fmt.Errorf("impulse refused for body %q", command.Body)
		}

	default:
		if err := s.player.Handle(command.Cmd); err != nil {
			return err
		}
	}

	frame := s.player.Snapshot()
	return writer.WriteJSON(Message{Type: MessageTypeFrame, Frame: &frame})
}

func centreOf(engine *ogcsim.Engine, name string) mgl64.Vec3 {
	transform, _ := engine.GetRigidBodyTransform(name)
	return transform.Position
}

func (s *Server) broadcast(frame runner.Frame) {
	s.mu.Lock()
	writers := make([]*SafeWriter, 0, len(s.clients))
	for writer := range s.clients {
		writers = append(writers, writer)
	}
	s.mu.Unlock()

	message := Message{Type: MessageTypeFrame, Frame: &frame}
	for _, writer := range writers {
		if err := writer.WriteJSON(message); err != nil {
			s.logger.Debug("client write failed", "error", err)
			s.disconnect(writer)
		}
	}
}

func (s *Server) disconnect(writer *SafeWriter) {
	s.mu.Lock()
	_, connected := s.clients[writer]
	delete(s.clients, writer)
	s.mu.Unlock()

	writer.Close()
	if connected {
		s.logger.Info("client disconnected")
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	writers := s.clients
	s.clients = make(map[*SafeWriter]struct{})
	s.mu.Unlock()

	for writer := range writers {
		writer.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
		writer.Close()
	}
}
