package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"kinect-show-go/internal/config"
	"kinect-show-go/internal/ingest"
	"kinect-show-go/internal/processing"
	"kinect-show-go/internal/render"
	"kinect-show-go/internal/types"
)

//go:embed web/*
var webFS embed.FS

// Deps wires the server to a recording. Load and Frames are required.
type Deps struct {
	Load     func(frame int) (types.RecordingFrame, error)
	Frames   func() []int
	Render   render.Options
	Hint     types.DepthRange
	RunID    string
	StatusFn func() map[string]any
	// Messages are broadcast as JSON to every websocket client.
	Messages <-chan any
	Log      logrus.FieldLogger
}

type Server struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.Mutex
	cfg      config.AppConfig
	deps     Deps
	log      logrus.FieldLogger
}

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

func New(cfg config.AppConfig, deps Deps) *Server {
	l := deps.Log
	if l == nil {
		l = logrus.StandardLogger().WithField("component", "server")
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		cfg:     cfg,
		deps:    deps,
		log:     l,
	}
}

// Run serves the viewer until ctx is cancelled.
func Run(ctx context.Context, cfg config.AppConfig, deps Deps) error {
	srv := New(cfg, deps)
	handler, err := srv.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if deps.Messages != nil {
		go srv.broadcast(ctx, deps.Messages)
	}

	srv.log.WithField("addr", httpServer.Addr).Info("viewer listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP routes of the viewer.
func (s *Server) Handler() (http.Handler, error) {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/config", s.handleConfig)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/frames", s.handleFrames)
	mux.HandleFunc("/frame", s.handleFrame)
	mux.HandleFunc("/frame.png", s.handleFramePNG)
	return mux, nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.mu.Lock()
	writeMu := &sync.Mutex{}
	s.clients[conn] = writeMu
	s.mu.Unlock()

	payload := s.configPayload()
	payload["type"] = "config"
	_ = s.writeJSON(conn, writeMu, payload)

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := s.writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer s.removeClient(conn)
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			var request struct {
				Type  string `json:"type"`
				Frame *int   `json:"frame"`
			}
			if err := json.Unmarshal(payload, &request); err != nil {
				continue
			}
			if request.Type != "frame_request" {
				continue
			}
			if request.Frame == nil {
				_ = s.writeJSON(conn, writeMu, errorMessage("frame is required"))
				continue
			}
			snapshot, err := s.snapshot(*request.Frame)
			if err != nil {
				_ = s.writeJSON(conn, writeMu, errorMessage(err.Error()))
				continue
			}
			_ = s.writeJSON(conn, writeMu, snapshot)
		}
	}()
}

func errorMessage(msg string) map[string]any {
	return map[string]any{"type": "error", "message": msg}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) configPayload() map[string]any {
	streams := make([]map[string]any, 0, len(types.Kinds))
	for _, kind := range types.Kinds {
		spec := types.MustSpec(kind)
		streams = append(streams, map[string]any{
			"kind":    kind.Dir(),
			"title":   spec.Title,
			"shape":   []int(spec.Shape),
			"element": spec.Element.String(),
			"bytes":   spec.ByteSize(),
		})
	}
	return map[string]any{
		"root":       s.cfg.Recording.Root,
		"byte_order": s.cfg.Recording.ByteOrder,
		"rate":       s.cfg.Playback.Rate,
		"loop":       s.cfg.Playback.Loop,
		"port":       s.cfg.Server.Port,
		"run_id":     s.deps.RunID,
		"streams":    streams,
		"palette":    types.IndexPalette,
		"depth_hint": map[string]any{"min": s.deps.Hint.Min, "max": s.deps.Hint.Max},
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.configPayload())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{}
	if s.deps.StatusFn != nil {
		if status := s.deps.StatusFn(); status != nil {
			payload = status
		}
	}
	payload["ws_clients"] = s.clientCount()
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleFrames(w http.ResponseWriter, _ *http.Request) {
	var frames []int
	if s.deps.Frames != nil {
		frames = s.deps.Frames()
	}
	if frames == nil {
		frames = []int{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"frames": frames, "count": len(frames)})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := ingest.ParseFrameIndex(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshot, err := s.snapshot(frame)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}

func (s *Server) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	frame, err := ingest.ParseFrameIndex(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.load(frame)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, rec, s.deps.Render); err != nil {
		s.log.WithError(err).WithField("frame", frame).Error("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) load(frame int) (types.RecordingFrame, error) {
	if s.deps.Load == nil {
		return types.RecordingFrame{}, errors.New("no recording loaded")
	}
	return s.deps.Load(frame)
}

func (s *Server) snapshot(frame int) (types.UISnapshot, error) {
	rec, err := s.load(frame)
	if err != nil {
		return types.UISnapshot{}, err
	}
	return types.UISnapshot{
		Type:    "frame",
		RunID:   s.deps.RunID,
		Summary: processing.Summarize(rec, s.deps.Hint),
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidFrameIndex):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrMalformedFrame):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrInvalidRecordingRoot):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) broadcast(ctx context.Context, messages <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-messages:
			if !ok {
				return
			}
			payload, err := json.Marshal(message)
			if err != nil {
				s.log.WithError(err).Warn("broadcast encode failed")
				continue
			}
			var stale []*websocket.Conn
			s.mu.Lock()
			for conn, writeMu := range s.clients {
				if err := s.writeMessage(conn, writeMu, websocket.TextMessage, payload); err != nil {
					stale = append(stale, conn)
				}
			}
			s.mu.Unlock()
			for _, conn := range stale {
				s.removeClient(conn)
			}
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, payload any) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

func (s *Server) writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
