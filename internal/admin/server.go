// Operator HTTP surface: control endpoints, live websocket stream,
// prometheus metrics, and the embedded dashboard page.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ddosim/internal/mission"
	"ddosim/internal/model"
	"ddosim/internal/sim"
)

//go:embed templates/index.html
var content embed.FS

const (
	writeTimeout = 5 * time.Second

	// sendBuffer bounds how many frames a lagging client may queue before
	// frames are dropped for it.
	sendBuffer = 64
)

// wsClient is one websocket connection with its outbound frame queue.
// All writes to the connection go through the queue so a stalled peer
// never blocks a broadcast caller.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Server exposes the simulation controller over HTTP. It also implements
// sim.SnapshotWriter and sim.StateWriter so it can sit in the writer
// fan-out and push every tick to connected websocket clients.
type Server struct {
	Ctrl     *sim.Controller
	tpl      *template.Template
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewServer creates a server for the given controller.
func NewServer(ctrl *sim.Controller) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{
		Ctrl:    ctrl,
		tpl:     tpl,
		clients: make(map[*wsClient]struct{}),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/log", s.handleLog)
	mux.HandleFunc("/challenges", s.handleChallenges)
	mux.HandleFunc("/attack", s.handleAttack)
	mux.HandleFunc("/mitigation", s.handleMitigation)
	mux.HandleFunc("/mission/start", s.handleMissionStart)
	mux.HandleFunc("/mission/abort", s.handleMissionAbort)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		State      sim.State
		Challenges []mission.Challenge
	}{
		State:      s.Ctrl.State(),
		Challenges: s.Ctrl.Challenges(),
	}
	_ = s.tpl.Execute(w, data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Ctrl.History())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Ctrl.LogEntries())
}

type challengeView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Vector      model.AttackVector `json:"vector"`
	Duration    int                `json:"duration_s"`
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	var views []challengeView
	for _, c := range s.Ctrl.Challenges() {
		views = append(views, challengeView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Vector:      c.Vector,
			Duration:    int(c.Duration / time.Second),
		})
	}
	writeJSON(w, views)
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v := model.AttackVector(r.URL.Query().Get("vector"))
	if err := s.Ctrl.SelectVector(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleMitigation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := model.Mitigation(r.URL.Query().Get("name"))
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		http.Error(w, "enabled must be true or false", http.StatusBadRequest)
		return
	}
	if err := s.Ctrl.SetMitigation(name, enabled); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleMissionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Ctrl.StartMission(r.URL.Query().Get("id")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleMissionAbort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Ctrl.AbortMission()
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Ctrl.Reset()
	writeJSON(w, s.Ctrl.State())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// The analysis goroutine outlives the 202 response, so it must not
	// inherit the request's cancellation.
	if err := s.Ctrl.RunAnalysis(context.WithoutCancel(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)

	// Reader loop only drains control frames; dropping out unregisters.
	go func() {
		defer s.dropClient(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// writePump serializes all writes to one client. It exits when the send
// queue is closed by dropClient or when a write fails.
func (s *Server) writePump(c *wsClient) {
	defer s.dropClient(c)
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// dropClient unregisters the client and closes its send queue. Closing
// under s.mu keeps broadcast from sending on a closed channel.
func (s *Server) dropClient(c *wsClient) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	_ = c.conn.Close()
}

// wsFrame is the envelope pushed to websocket clients.
type wsFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// broadcast enqueues the frame for every connected client. It never
// blocks: the controller may call this while holding its own mutex, so a
// stalled connection loses frames instead of stalling the tick loop.
func (s *Server) broadcast(frame wsFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			// Queue full; the client is too slow for this frame.
		}
	}
	s.mu.Unlock()
}

// Write implements sim.SnapshotWriter by pushing the snapshot to all
// connected websocket clients.
func (s *Server) Write(snap model.MetricsSnapshot) error {
	s.broadcast(wsFrame{Type: "snapshot", Data: snap})
	return nil
}

// WriteState implements sim.StateWriter.
func (s *Server) WriteState(state sim.State) error {
	s.broadcast(wsFrame{Type: "state", Data: state})
	return nil
}

// WriteEvent implements sim.EventWriter.
func (s *Server) WriteEvent(e model.LogEntry) error {
	s.broadcast(wsFrame{Type: "event", Data: e})
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
