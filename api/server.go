// Package api hosts the browser-facing HTTP surface of the gateway: the
// upload and results pages, the analysis proxy endpoints, and the submission
// flow API.
package api

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/api/controllers"
	"github.com/veritaslabs/veritas-gateway/api/middlewares"
	"github.com/veritaslabs/veritas-gateway/api/notifyhub"
	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

// proxyRateLimit protects the backend from upload floods.
const (
	proxyRateLimitRPS   = 5.0
	proxyRateLimitBurst = 10
)

// Server represents the HTTP server for the upload/review flow.
type Server struct {
	port           int
	relay          *relay.Client
	hub            *notifyhub.Hub
	templateFS     fs.FS
	maxUploadBytes int64
	engine         *gin.Engine
	server         *http.Server
	mu             sync.RWMutex
}

// NewServer creates a gateway server relaying to the backend base address.
func NewServer(port int, relayClient *relay.Client, templateFS fs.FS, maxUploadBytes int64) *Server {
	return &Server{
		port:           port,
		relay:          relayClient,
		hub:            notifyhub.New(),
		templateFS:     templateFS,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *Server) setupRoutes() (*gin.Engine, error) {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middlewares.AllowAllCORS())
	if s.maxUploadBytes > 0 {
		engine.MaxMultipartMemory = s.maxUploadBytes
	}

	templates, err := template.ParseFS(s.templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %v", err)
	}
	engine.SetHTMLTemplate(templates)

	// Initialize controllers
	analyzeCtrl := controllers.NewAnalyzeController(s.relay)
	combinedCtrl := controllers.NewCombinedController(s.relay)
	healthCtrl := controllers.NewHealthController(s.relay)
	sessionCtrl := controllers.NewSessionController(s.maxUploadBytes)
	submitCtrl := controllers.NewSubmitController(s.relay, s.hub)
	diagCtrl := controllers.NewDiagnosticsController(s.relay)

	// Pages
	engine.GET("/", controllers.HandleIndex)
	engine.GET("/results", controllers.HandleResults)

	// Thin proxy endpoints: multipart in, backend JSON straight through.
	proxy := engine.Group("/api/proxy/v1", middlewares.RateLimit(proxyRateLimitRPS, proxyRateLimitBurst))
	{
		proxy.POST("/analyze/sneaker", analyzeCtrl.HandleAnalyze(types.CategorySneaker))
		proxy.POST("/analyze/box", analyzeCtrl.HandleAnalyze(types.CategoryBox))
		proxy.POST("/analyze/video", analyzeCtrl.HandleAnalyze(types.CategoryVideo))
		proxy.POST("/analyze/combined", combinedCtrl.HandleCombined)
		proxy.GET("/health", healthCtrl.HandleHealth)
	}

	// Submission flow: staged upload set, fan-out, aggregation, navigation.
	flow := engine.Group("/api/flow/v1")
	{
		flow.POST("/session", sessionCtrl.HandleCreateSession)
		flow.GET("/session/:id", sessionCtrl.HandleSessionStatus)
		flow.POST("/session/:id/file/:category", sessionCtrl.HandleSelectFile)
		flow.DELETE("/session/:id/file/:category", sessionCtrl.HandleRemoveFile)
		flow.POST("/session/:id/submit", submitCtrl.HandleSubmit)
	}

	self := engine.Group("/api/self/v1")
	{
		self.GET("/create-qr-code", controllers.GenerateQRCode) // QR code PNG (same params as api.qrserver.com)
		self.GET("/diagnostics", diagCtrl.HandleDiagnostics)    // backend reachability report
		self.GET("/notify-ws", notifyhub.HandleNotifyWS(s.hub)) // submission progress events
	}

	return engine, nil
}

// Engine builds and returns the configured gin engine, for tests and for
// embedding the server behind another mux.
func (s *Server) Engine() (*gin.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		engine, err := s.setupRoutes()
		if err != nil {
			return nil, err
		}
		s.engine = engine
	}
	return s.engine, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	engine, err := s.Engine()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: engine,
	}
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting gateway on http://0.0.0.0:%d (backend: %s)", s.port, s.relay.BaseURL())
	return s.server.ListenAndServe()
}
