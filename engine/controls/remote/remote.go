// Package remote serves the control panel over websockets so any client can read and change
// the demo's controls while it runs.
package remote

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Path is the websocket endpoint.
const Path = "/ws"

// writeWait bounds every write so one stalled client cannot hold up the hub.
const writeWait = 2 * time.Second

//go:embed assets/panel.html
var panelHTML []byte

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// remote is the implementation of the Remote interface.
type remote struct {
	ctrl controls.Controls

	mu      sync.Mutex
	clients map[*websocket.Conn]*client

	// changed holds at most one pending notification; Run always sends the latest state.
	changed chan struct{}
}

// client is one connection's write lock, snapshot format and the control version it last
// received. sent is guarded by lock.
type client struct {
	lock sync.Mutex
	text bool
	sent uint64
}

// Remote is a websocket hub bound to one set of controls. Changes made by any client, or by
// any other surface such as the keyboard or console, are broadcast to every client.
type Remote interface {
	// Handler returns the HTTP handler serving the panel page at "/" and the websocket at Path.
	Handler() http.Handler

	// Run delivers broadcasts until ctx is done, then closes every client connection.
	//
	// Parameters:
	//   - ctx: stops the hub when cancelled
	//
	// Returns:
	//   - error: always nil, kept for errgroup
	Run(ctx context.Context) error

	// ListenAndServe runs the hub and an HTTP server on addr until ctx is done.
	//
	// Parameters:
	//   - ctx: shuts the server down when cancelled
	//   - addr: the listen address, e.g. "localhost:8080"
	//
	// Returns:
	//   - error: the first listener error, or nil after a clean shutdown
	ListenAndServe(ctx context.Context, addr string) error

	// Clients returns the number of connected clients.
	Clients() int
}

var _ Remote = &remote{}

// NewRemote creates a websocket hub for ctrl and subscribes it to control changes.
// It panics if ctrl is nil.
//
// Parameters:
//   - ctrl: the controls to expose
//
// Returns:
//   - Remote: the hub
func NewRemote(ctrl controls.Controls) Remote {
	if ctrl == nil {
		panic("remote: NewRemote requires non-nil Controls")
	}
	r := &remote{
		ctrl:    ctrl,
		clients: make(map[*websocket.Conn]*client),
		changed: make(chan struct{}, 1),
	}
	ctrl.OnChange(r.notifyChange)
	return r
}

func (r *remote) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, r.serveWs)
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(panelHTML)
	})
	return mux
}

func (r *remote) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-r.changed:
			// the version is read first so the snapshot is never older than it
			version := r.ctrl.Version()
			binary, text, err := encodeBoth(r.ctrl.Snapshot())
			if err != nil {
				log.Printf("[Remote] encode snapshot: %v", err)
				continue
			}

			r.mu.Lock()
			type clientEntry struct {
				conn *websocket.Conn
				c    *client
			}
			targets := make([]clientEntry, 0, len(r.clients))
			for conn, c := range r.clients {
				targets = append(targets, clientEntry{conn, c})
			}
			r.mu.Unlock()

			for _, target := range targets {
				target.c.lock.Lock()
				err = nil
				if version > target.c.sent {
					err = writeSnapshot(target.conn, target.c, version, binary, text)
				}
				target.c.lock.Unlock()
				if err != nil {
					log.Printf("[Remote] write to %s failed: %v", target.conn.RemoteAddr(), err)
					r.removeClient(target.conn)
				}
			}
		}
	}
}

func (r *remote) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("[Remote] control panel listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("remote listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (r *remote) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// serveWs upgrades the request, sends the current snapshot and reads updates until the
// client goes away. Clients connecting with ?format=json get protojson text snapshots
// instead of binary Struct frames.
func (r *remote) serveWs(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[Remote] upgrade failed: %v", err)
		return
	}
	text := req.URL.Query().Get("format") == "json"

	// the initial snapshot goes out before any broadcast can reach this client
	c := &client{text: text}
	c.lock.Lock()
	r.addClient(conn, c)
	defer r.removeClient(conn)

	version := r.ctrl.Version()
	binary, textSnap, err := encodeBoth(r.ctrl.Snapshot())
	if err == nil {
		err = writeSnapshot(conn, c, version, binary, textSnap)
	}
	c.lock.Unlock()
	if err != nil {
		log.Printf("[Remote] initial snapshot to %s: %v", conn.RemoteAddr(), err)
		return
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Remote] read from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		values, err := DecodeValues(messageType, data)
		if err == nil {
			err = r.ctrl.Apply(values)
		}
		if err != nil {
			log.Printf("[Remote] rejected update from %s: %v", conn.RemoteAddr(), err)
			if wErr := r.writeSafe(conn, websocket.TextMessage, encodeError(err)); wErr != nil {
				return
			}
		}
	}
}

// notifyChange is the controls change listener. It never blocks; a notification already
// pending covers this change too.
func (r *remote) notifyChange(controls.Snapshot) {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// writeSnapshot sends one encoded snapshot in the client's format and records its version.
// The caller holds c.lock.
func writeSnapshot(conn *websocket.Conn, c *client, version uint64, binary, text []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	var err error
	if c.text {
		err = conn.WriteMessage(websocket.TextMessage, text)
	} else {
		err = conn.WriteMessage(websocket.BinaryMessage, binary)
	}
	if err != nil {
		return err
	}
	c.sent = version
	return nil
}

// writeSafe serializes writes to one connection.
func (r *remote) writeSafe(conn *websocket.Conn, messageType int, data []byte) error {
	r.mu.Lock()
	c, ok := r.clients[conn]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("client %s not registered", conn.RemoteAddr())
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}

func (r *remote) addClient(conn *websocket.Conn, c *client) {
	r.mu.Lock()
	r.clients[conn] = c
	r.mu.Unlock()
	log.Printf("[Remote] client connected: %s", conn.RemoteAddr())
}

func (r *remote) removeClient(conn *websocket.Conn) {
	r.mu.Lock()
	c, ok := r.clients[conn]
	if ok {
		delete(r.clients, conn)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	c.lock.Lock()
	_ = conn.Close()
	c.lock.Unlock()
	log.Printf("[Remote] client disconnected: %s", conn.RemoteAddr())
}

func (r *remote) closeAll() {
	r.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(r.clients))
	for c := range r.clients {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		r.removeClient(c)
	}
}
