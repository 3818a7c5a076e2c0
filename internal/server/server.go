package server

//go:generate swag init -d ../.. -g internal/server/server.go -o ../../docs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.elastic.co/apm/v2"

	"github.com/rezonia/facturx-fusion/docs"
	"github.com/rezonia/facturx-fusion/internal/config"
	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/processor"
	"github.com/rezonia/facturx-fusion/internal/telemetry"
)

// Route paths
const (
	BasePath    = "/fusion"
	HealthPath  = BasePath + "/api/health"
	V1Generate  = BasePath + "/v1/GenerateFacturX"
	V2Generate  = BasePath + "/v2/GenerateFacturX"
	V1Inspect   = BasePath + "/v1/InspectFacturX"
	OpenAPIPath = BasePath + "/openapi.json"
	DocsPath    = BasePath + "/docs/*any"
)

// Config holds server configuration
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
	// V1Response is config.ResponseJSON or config.ResponseFile
	V1Response      string
	MaxRequestBytes int64
}

// ConfigFrom builds the server configuration from the service configuration
func ConfigFrom(cfg config.Config) *Config {
	return &Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Debug:           cfg.Server.Debug,
		V1Response:      cfg.Server.V1Response,
		MaxRequestBytes: cfg.Limits.MaxRequestBytes,
	}
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	tracer   *apm.Tracer
}

// Option configures the server
type Option func(*Server)

// WithPipeline sets the generation pipeline
func WithPipeline(p *processor.Pipeline) Option {
	return func(s *Server) {
		s.pipeline = p
	}
}

// WithTracer enables APM instrumentation with the given tracer
func WithTracer(t *apm.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	setupBinding()

	s := &Server{
		config: config,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = processor.NewPipeline()
	}

	router := gin.New()
	if config.MaxRequestBytes > 0 {
		router.MaxMultipartMemory = config.MaxRequestBytes
	}
	router.Use(requestID())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: logFormatter,
		SkipPaths: []string{HealthPath},
	}))
	router.Use(gin.Recovery())
	if s.tracer != nil {
		router.Use(telemetry.Middleware(router, s.tracer))
	}
	router.Use(bodyLimit(config.MaxRequestBytes))

	s.router = router
	s.setupRoutes()
	return s
}

// @title Factur-X Fusion API
// @version 1.0
// @description Embeds a Factur-X XML invoice and attachments into a PDF.
// @BasePath /fusion
func (s *Server) setupRoutes() {
	fusion := s.router.Group(BasePath)
	{
		fusion.GET("/api/health", s.handleHealth)
		fusion.POST("/v1/GenerateFacturX", s.handleGenerateV1)
		fusion.POST("/v2/GenerateFacturX", s.handleGenerateV2)
		fusion.POST("/v1/InspectFacturX", s.handleInspect)

		fusion.GET("/openapi.json", s.handleOpenAPI)
		fusion.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(OpenAPIPath)))
	}
}

// Run starts the HTTP server and blocks until ctx is done, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server listening", "address", s.config.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logging.Info("Shutting down server", "timeout", timeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth godoc
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {string} string "Healthy"
// @Router /api/health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, "Healthy")
}

func (s *Server) handleOpenAPI(c *gin.Context) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
