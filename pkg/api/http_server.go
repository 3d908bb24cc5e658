package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/hunt"
	"treasurehunt/pkg/monitor"
)

type Server struct {
	svc     *hunt.Service
	metrics *monitor.Metrics
	logger  *slog.Logger
	router  *gin.Engine
	http    *http.Server
}

// NewServer wires the routes; metrics may be nil, in which case /metrics is not served.
func NewServer(svc *hunt.Service, metrics *monitor.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = monitor.NopLogger()
	}
	s := &Server{
		svc:     svc,
		metrics: metrics,
		logger:  logger.With("component", "api"),
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLog())

	api := s.router.Group("/api")
	api.POST("/hunts", s.handleCreateHunt)
	api.GET("/hunts", s.handleListHunts)
	api.GET("/hunts/:id", s.handleGetHunt)
	api.GET("/partitions", s.handlePartitions)

	s.router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if metrics != nil {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops; http.ErrServerClosed is returned as nil.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) handleCreateHunt(c *gin.Context) {
	var req common.HuntParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	run, err := s.svc.Run(c.Request.Context(), req, nil)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run.View())
}

func (s *Server) handleListHunts(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	runs, err := s.svc.List(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	views := make([]hunt.View, len(runs))
	for i, r := range runs {
		views[i] = r.View()
	}
	c.JSON(http.StatusOK, gin.H{"runs": views})
}

func (s *Server) handleGetHunt(c *gin.Context) {
	run, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run.View())
}

func (s *Server) handlePartitions(c *gin.Context) {
	regions, err1 := strconv.Atoi(c.Query("regions"))
	groups, err2 := strconv.Atoi(c.Query("groups"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "regions and groups must be integers"})
		return
	}
	if err := core.Validate(regions, groups, 1); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partitions": hunt.PartitionViews(core.Partitions(regions, groups))})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidParams):
		status = http.StatusBadRequest
	case errors.Is(err, hunt.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, hunt.ErrNoHistory):
		status = http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
