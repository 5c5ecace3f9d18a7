// Package api provides HTTP API capabilities for the kapreport calculator.
// This is a capability module that can be enabled via the CLI or used programmatically.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aqlanhadi/kapreport/anlagekap"
	"github.com/aqlanhadi/kapreport/extractor"
	"github.com/aqlanhadi/kapreport/renderer"
)

// Config holds the API server configuration
type Config struct {
	Port        string
	LogPrefix   string
	MaxUploadMB int64
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:        ":8080",
		LogPrefix:   "API: ",
		MaxUploadMB: 10,
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
	now    func() time.Time
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = DefaultConfig().MaxUploadMB
	}
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		now:    time.Now,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/report", s.handleReport)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleReport parses an uploaded activity statement and returns its
// Anlage KAP values
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("%sUpload exceeds %d MB", s.config.LogPrefix, s.config.MaxUploadMB)
			http.Error(w, "Uploaded file is too large", http.StatusBadRequest)
			return
		}
		log.Printf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		log.Printf("%sError getting file from form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	statement, err := extractor.ProcessReader(file, handler.Filename)
	if err != nil {
		log.Printf("%sError reading file: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not read file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch format := coalesce(r.FormValue("format"), r.URL.Query().Get("format"), "json"); format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(extractor.CreateFinalOutput(statement))
	case "html":
		doc := renderer.NewDocument(statement, anlagekap.Calculate(statement), handler.Filename)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderer.HTML(w, doc, s.now()); err != nil {
			log.Printf("%sError rendering HTML: %v", s.config.LogPrefix, err)
		}
	default:
		http.Error(w, "Unsupported format: "+format, http.StatusBadRequest)
	}
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
