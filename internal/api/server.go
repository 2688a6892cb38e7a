package api

import (
	"context"
	"net/http"
	"time"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/observation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recomputer is the part of the coordinator the HTTP layer drives
type Recomputer interface {
	Trigger()
	Status() aggregate.Status
}

// Server exposes submission, published averages and recompute control over HTTP
type Server struct {
	router  *gin.Engine
	results *ResultsHandler
	avgs    *AveragesHandler
	control *RecomputeHandler
	events  *EventHub
	logger  *internal.Logger
	srv     *http.Server
}

// NewServer builds the router. events may be nil; metrics toggles the /metrics endpoint.
func NewServer(store *observation.Store, recomputer Recomputer, events *EventHub, metrics bool, logger *internal.Logger) *Server {
	logger = logger.WithComponent("API")
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		router:  router,
		results: NewResultsHandler(store, recomputer, logger),
		avgs:    NewAveragesHandler(store.Root(), logger),
		control: NewRecomputeHandler(recomputer),
		events:  events,
		logger:  logger,
	}
	s.routes(metrics)
	return s
}

func (s *Server) routes(metrics bool) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.POST("/results", s.results.HandleSubmit())
		api.GET("/results/:id", s.results.HandleGet())

		api.GET("/averages", s.avgs.HandleList())
		api.GET("/averages/:hypothesis", s.avgs.HandleHypothesis())
		api.GET("/averages/:hypothesis/:variant", s.avgs.HandleVariant())

		api.POST("/recompute", s.control.HandleTrigger())
		api.GET("/recompute/status", s.control.HandleStatus())
		if s.events != nil {
			api.GET("/recompute/events", s.events.HandleSSE)
		}
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and blocks until the server is shut down
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
