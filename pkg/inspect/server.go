package inspect

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/store"
)

// Defaults.
const (
	DefaultSendBuffer   = 64
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second
	maxBodySize         = 1 << 20
)

// Item is one entry of GET /items.
type Item struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Server is the inspector. Use Handler to mount it.
type Server struct {
	storage persist.Storage
	name    string
	bus     *broadcast.Bus
	logger  *slog.Logger

	gatherer     prometheus.Gatherer
	dispatch     func(func())
	sendBuffer   int
	writeTimeout time.Duration
	pingInterval time.Duration

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// Option configures a Server.
type Option func(*Server)

// WithBus sets the bus writes are published on and /events follows.
// Default: broadcast.Default().
func WithBus(bus *broadcast.Bus) Option {
	return func(s *Server) {
		s.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDispatch runs every write through dispatch, for example
// reactive.Runtime.Dispatch, so that bus listeners run on the goroutine that
// owns the components. The request waits until the write has run.
func WithDispatch(dispatch func(func())) Option {
	return func(s *Server) {
		s.dispatch = dispatch
	}
}

// WithSendBuffer sets how many events may be queued per /events client
// before further events are dropped for that client.
func WithSendBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// WithPingInterval sets how often /events clients are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithCheckOrigin sets the websocket origin check. By default only
// same-origin requests are upgraded.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates an inspector for storage. Events are followed on the channel
// persist.NameOf(storage) reports.
func New(storage persist.Storage, opts ...Option) *Server {
	s := &Server{
		storage:      storage,
		name:         persist.NameOf(storage),
		logger:       slog.Default(),
		gatherer:     prometheus.DefaultGatherer,
		sendBuffer:   DefaultSendBuffer,
		writeTimeout: DefaultWriteTimeout,
		pingInterval: DefaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = broadcast.Default()
	}
	s.logger = s.logger.With("component", "inspect", "channel", s.name)
	return s
}

// Handler returns the router serving every inspector route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/items", s.listItems)
	r.Route("/items/{key}", func(r chi.Router) {
		r.Get("/", s.getItem)
		r.Put("/", s.putItem)
		r.Delete("/", s.deleteItem)
	})
	r.Get("/events", s.events)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	keys, err := persist.Keys(s.storage)
	if errors.Is(err, persist.ErrNotListable) {
		http.Error(w, "backend cannot list keys", http.StatusNotImplemented)
		return
	}
	if err != nil {
		s.backendError(w, "list", "", err)
		return
	}

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		raw, found, err := s.storage.GetItem(key)
		if err != nil {
			s.backendError(w, "get", key, err)
			return
		}
		if !found || !json.Valid([]byte(raw)) {
			continue
		}
		items = append(items, Item{Key: key, Value: json.RawMessage(raw)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	key, ok := urlKey(w, r)
	if !ok {
		return
	}

	raw, found, err := s.storage.GetItem(key)
	if err != nil {
		s.backendError(w, "get", key, err)
		return
	}
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Item{Key: key, Value: json.RawMessage(raw)})
}

func (s *Server) putItem(w http.ResponseWriter, r *http.Request) {
	key, ok := urlKey(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		http.Error(w, "body is not valid JSON", http.StatusBadRequest)
		return
	}

	var changed bool
	err = s.run(r, func() error {
		var err error
		changed, err = store.SetItem(s.bus, s.storage, key, value)
		return err
	})
	if err != nil {
		s.backendError(w, "set", key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	key, ok := urlKey(w, r)
	if !ok {
		return
	}

	var removed bool
	err := s.run(r, func() error {
		var err error
		removed, err = store.RemoveItem(s.bus, s.storage, key)
		return err
	})
	if err != nil {
		s.backendError(w, "remove", key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

var errDispatchAborted = errors.New("inspect: request ended before the write ran")

// run executes fn directly, or through the dispatch function and waits for it.
func (s *Server) run(r *http.Request, fn func() error) error {
	if s.dispatch == nil {
		return fn()
	}

	done := make(chan error, 1)
	s.dispatch(func() {
		done <- fn()
	})
	select {
	case err := <-done:
		return err
	case <-r.Context().Done():
		return errDispatchAborted
	}
}

func (s *Server) backendError(w http.ResponseWriter, op, key string, err error) {
	s.logger.Error("backend error", "op", op, "key", key, "error", err)
	http.Error(w, err.Error(), http.StatusBadGateway)
}

func urlKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return "", false
	}
	return key, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
