package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/handshake"
	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/aretw0/handshake/pkg/process"
	"github.com/go-chi/chi/v5"
)

// Engine defines what the HTTP surface needs from the resolver.
type Engine interface {
	Start(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (*process.Process, error)
	Dismiss(invitationID string) error
	Teardown(invitationID string) error
}

// DefaultRetention is how long a finished process stays queryable and
// replays its destination to late SSE subscribers.
const DefaultRetention = 5 * time.Minute

// Server exposes process lifecycles over HTTP and streams their progress as SSE.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	mu        sync.RWMutex
	procs     map[string]*process.Process // last process started per invitation
	retention time.Duration
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logging.Guard(logger)
		}
	}
}

// WithRetention sets how long finished processes are kept.
func WithRetention(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewServer creates a server for the engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine: engine,
		procs:     make(map[string]*process.Process),
		retention: DefaultRetention,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/processes/{invitationID}", func(r chi.Router) {
		r.Post("/", s.StartProcess)
		r.Get("/", s.GetProcess)
		r.Delete("/", s.TeardownProcess)
		r.Post("/dismiss", s.DismissProcess)
		r.Get("/events", s.SubscribeEvents)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartProcess handles POST /processes/{invitationID}.
func (s *Server) StartProcess(w http.ResponseWriter, r *http.Request) {
	invitationID := chi.URLParam(r, "invitationID")

	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("StartProcess: Invalid request body", "err", err)
		return
	}

	streams := s.Streams
	hooks := domain.LifecycleHooks{
		OnChange: func(_ context.Context, diff *domain.StateDiff) {
			if err := streams.BroadcastJSON(invitationID, EventState, diff); err != nil {
				s.logger.Error("Failed to broadcast state diff", "err", err)
			}
		},
		OnDelay: func(_ context.Context, e *domain.DelayEvent) {
			if err := streams.BroadcastJSON(invitationID, EventNotice, e); err != nil {
				s.logger.Error("Failed to broadcast notice", "err", err)
			}
		},
	}

	nav := StreamNavigator{Streams: streams, InvitationID: invitationID}
	p, err := s.Engine.Start(r.Context(), invitationID, nav,
		process.WithLifecycleHooks(hooks),
		process.WithFeedQuery(domain.FeedQuery{ExternalCredentialURI: strings.TrimSpace(body.ExternalCredentialURI)}),
	)
	if err != nil {
		if errors.Is(err, domain.ErrProcessRunning) {
			http.Error(w, fmt.Sprintf("Process already running: %v", err), http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("Start error: %v", err), http.StatusInternalServerError)
		s.logger.Error("StartProcess failed", "invitation_id", invitationID, "err", err)
		return
	}

	s.mu.Lock()
	s.procs[invitationID] = p
	s.mu.Unlock()
	go s.forget(invitationID, p)

	s.logger.Info("Process started", "invitation_id", invitationID, "process_id", p.ID())
	writeJSON(w, http.StatusAccepted, newProcessView(p), s.logger)
}

// GetProcess handles GET /processes/{invitationID}.
func (s *Server) GetProcess(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(chi.URLParam(r, "invitationID"))
	if !ok {
		http.Error(w, domain.ErrProcessNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newProcessView(p), s.logger)
}

// DismissProcess handles POST /processes/{invitationID}/dismiss.
func (s *Server) DismissProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Dismiss(chi.URLParam(r, "invitationID")); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// TeardownProcess handles DELETE /processes/{invitationID}.
func (s *Server) TeardownProcess(w http.ResponseWriter, r *http.Request) {
	invitationID := chi.URLParam(r, "invitationID")
	if err := s.Engine.Teardown(invitationID); err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.mu.Lock()
	delete(s.procs, invitationID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "handshake-http",
		"version": strings.TrimSpace(handshake.Version),
	}, s.logger)
}

// SubscribeEvents handles GET /processes/{invitationID}/events (SSE).
// The stream ends after the destination event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	invitationID := chi.URLParam(r, "invitationID")
	ch, cancel := s.Streams.Subscribe(invitationID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	// A process that resolved before the subscription replays its destination.
	if p, ok := s.lookup(invitationID); ok {
		if state := p.State(); state.Resolved() {
			data, err := json.Marshal(NewDestinationView(state.Outcome))
			if err == nil {
				writeEvent(w, Event{Name: EventDestination, Data: string(data)})
				flusher.Flush()
			}
			return
		}
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected", "invitation_id", invitationID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
			if ev.Name == EventDestination {
				return
			}
		}
	}
}

// forget drops a finished process once its retention window has passed,
// unless a newer process replaced it.
func (s *Server) forget(invitationID string, p *process.Process) {
	<-p.Done()
	time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.procs[invitationID] == p {
			delete(s.procs, invitationID)
		}
	})
}

func (s *Server) lookup(invitationID string) (*process.Process, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.procs[invitationID]
	return p, ok
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrProcessNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
	s.logger.Error("Engine call failed", "err", err)
}

func writeEvent(w io.Writer, ev Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
