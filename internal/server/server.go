// Package server implements the live preview server. It serves rendered
// index pages over HTTP, pushes reload notifications to browsers over
// WebSocket when watched Markdown files change, and exposes a small JSON API
// over the registry, lint engine, and search index.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/mdindex/internal/config"
	"github.com/conneroisu/mdindex/internal/lint"
	"github.com/conneroisu/mdindex/internal/registry"
	"github.com/conneroisu/mdindex/internal/scanner"
	"github.com/conneroisu/mdindex/internal/search"
	"github.com/conneroisu/mdindex/internal/site"
	"github.com/conneroisu/mdindex/internal/validation"
	"github.com/conneroisu/mdindex/internal/watcher"
)

// Client represents a WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer serves index pages with live reload capability
type PreviewServer struct {
	config        *config.Config
	httpServer    *http.Server
	serverMutex   sync.RWMutex
	clients       map[*websocket.Conn]*Client
	clientsMutex  sync.RWMutex
	broadcast     chan []byte
	register      chan *Client
	unregister    chan *websocket.Conn
	registry      *registry.PageRegistry
	watcher       *watcher.FileWatcher
	scanner       *scanner.PageScanner
	builder       *site.Builder
	linter        *lint.Engine
	indexer       *search.EntryIndexer
	shutdownOnce  sync.Once
	isShutdown    bool
	shutdownMutex sync.RWMutex
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a new preview server
func New(cfg *config.Config) (*PreviewServer, error) {
	reg := registry.NewPageRegistry()

	fileWatcher, err := watcher.NewFileWatcher(300 * time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	pageScanner := scanner.NewPageScanner(reg, cfg.Indexes.ExcludePatterns...)

	builder := site.NewBuilder(reg, cfg.Build.OutputDir, cfg.Build.StaticDir, cfg.Build.Workers)
	builder.LiveReload = true

	indexer, err := search.NewEntryIndexer()
	if err != nil {
		fileWatcher.Stop()
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	return &PreviewServer{
		config:     cfg,
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		registry:   reg,
		watcher:    fileWatcher,
		scanner:    pageScanner,
		builder:    builder,
		linter:     lint.NewEngine(nil),
		indexer:    indexer,
	}, nil
}

// Registry exposes the server's page registry, mainly for tests
func (s *PreviewServer) Registry() *registry.PageRegistry {
	return s.registry
}

// Start starts the preview server
func (s *PreviewServer) Start(ctx context.Context) error {
	s.setupFileWatcher(ctx)

	// Initial scan
	if err := s.initialScan(); err != nil {
		log.Printf("Initial scan failed: %v", err)
	}

	// Start WebSocket hub
	go s.runWebSocketHub(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/page/", s.handlePage)
	mux.HandleFunc("/static/", s.handleStatic)
	mux.HandleFunc("/api/entries", s.handleEntries)
	mux.HandleFunc("/api/lint", s.handleLint)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/", s.handleIndex)

	handler := s.addMiddleware(mux)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	if s.config.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s", addr))
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) {
	s.watcher.AddFilter(watcher.MarkdownFilter)
	s.watcher.AddFilter(watcher.NoGitFilter)
	s.watcher.AddFilter(watcher.NoOutputFilter(s.config.Build.OutputDir))

	s.watcher.AddHandler(s.handleFileChange)

	for _, path := range s.config.Indexes.ScanPaths {
		if err := s.watcher.AddRecursive(path); err != nil {
			log.Printf("Failed to watch path %s: %v", path, err)
		}
	}

	if err := s.watcher.Start(ctx); err != nil {
		log.Printf("Failed to start file watcher: %v", err)
	}
}

func (s *PreviewServer) initialScan() error {
	log.Printf("Starting initial scan with paths: %v", s.config.Indexes.ScanPaths)
	for _, path := range s.config.Indexes.ScanPaths {
		if err := s.scanner.ScanDirectory(path); err != nil {
			log.Printf("Error scanning %s: %v", path, err)
			continue
		}
	}

	if err := s.indexer.IndexAll(s.registry.Entries()); err != nil {
		log.Printf("Error building search index: %v", err)
	}

	log.Printf("Found %d index pages with %d entries", s.registry.Count(), s.registry.EntryCount())
	return nil
}

func (s *PreviewServer) handleFileChange(events []watcher.ChangeEvent) error {
	for _, event := range events {
		log.Printf("File changed: %s (%s)", event.Path, event.Type)

		if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
			s.registry.Remove(event.Path)
			continue
		}

		if err := s.scanner.ScanFile(event.Path); err != nil {
			log.Printf("Failed to rescan file %s: %v", event.Path, err)
		}
	}

	if err := s.indexer.IndexAll(s.registry.Entries()); err != nil {
		log.Printf("Error rebuilding search index: %v", err)
	}

	s.broadcastMessage(UpdateMessage{
		Type:      "reload",
		Timestamp: time.Now(),
	})

	return nil
}

func (s *PreviewServer) openBrowser(url string) {
	time.Sleep(100 * time.Millisecond) // Give server time to start

	// Validate URL for security before passing to system commands
	if err := validation.ValidateURL(url); err != nil {
		log.Printf("Browser open failed due to invalid URL: %v", err)
		return
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

func (s *PreviewServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS headers based on environment
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if s.config.Server.Environment == "development" {
			// Only allow wildcard in development
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		// Production default: no CORS header

		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// isAllowedOrigin checks if the origin is in the allowed origins list
func (s *PreviewServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

func (s *PreviewServer) broadcastMessage(msg UpdateMessage) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		s.broadcast <- []byte(`{"type":"reload"}`)
		return
	}

	s.broadcast <- jsonData
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		log.Println("Shutting down server...")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		if s.watcher != nil {
			s.watcher.Stop()
		}

		if s.indexer != nil {
			s.indexer.Close()
		}

		// Close all WebSocket connections
		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusNormalClosure, "")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
