// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	applog "freqlab/internal/log"
)

var (
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "freqlab",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Connected viewer count",
	})

	wsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "websocket",
		Name:      "dropped_total",
		Help:      "Messages not broadcast",
	}, []string{"reason"}) // rate_limited, queue_full
)

// WebSocketTransport broadcasts JSON messages to every connected viewer. It
// also serves Prometheus metrics on /metrics.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	limiter   *rate.Limiter
	server    *http.Server
	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketTransport creates a transport for addr and starts its
// broadcast loop. maxRate caps broadcasts per second; 0 means unlimited.
// Call Start to begin listening.
func NewWebSocketTransport(addr string, maxRate float64) *WebSocketTransport {
	limit := rate.Inf
	if maxRate > 0 {
		limit = rate.Limit(maxRate)
	}
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Viewers are served from anywhere on the local machine.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		limiter:   rate.NewLimiter(limit, 1),
		done:      make(chan struct{}),
	}
	wst.server = &http.Server{Addr: addr, Handler: wst.Handler()}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP routes: /ws for viewers and /metrics.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start begins serving in a background goroutine.
func (wst *WebSocketTransport) Start() {
	go func() {
		applog.Infof("WebSocketTransport: Starting server on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	wsClients.Set(float64(total))
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	// Viewers never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	if ok {
		conn.Close()
		wsClients.Set(float64(total))
		applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
	}
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			var failed []*websocket.Conn
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
					failed = append(failed, client)
				}
			}
			wst.clientsMu.Unlock()
			for _, c := range failed {
				wst.drop(c)
			}
		case <-wst.done:
			return
		}
	}
}

// Clients returns the number of connected viewers.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Send queues data for broadcast. Messages over the rate limit or beyond
// the queue capacity are dropped; Send never blocks.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return errors.New("WebSocketTransport: closed")
	default:
	}
	if !wst.limiter.Allow() {
		wsDropped.WithLabelValues("rate_limited").Inc()
		return nil
	}
	select {
	case wst.broadcast <- data:
	default:
		wsDropped.WithLabelValues("queue_full").Inc()
	}
	return nil
}

// Close shuts down the server and disconnects every viewer.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocketTransport: Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()
		wsClients.Set(0)

		err = wst.server.Close()
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
