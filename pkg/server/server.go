// Package server exposes the webhook and run-inspection API. Incoming
// events are matched against registered workflows; matching runs execute
// one at a time on a single worker, in arrival order.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Promptonauts/conveyor/pkg/models"
	"github.com/Promptonauts/conveyor/pkg/observability"
	"github.com/Promptonauts/conveyor/pkg/runner"
	"github.com/Promptonauts/conveyor/pkg/store"
	"github.com/Promptonauts/conveyor/pkg/trigger"
	"github.com/Promptonauts/conveyor/pkg/workflow"
)

type job struct {
	wf *models.WorkflowSpec
	ev models.Event
}

type Server struct {
	cfg     *Config
	store   store.Store
	runner  *runner.Runner
	logger  *zap.Logger
	metrics *observability.MetricsRegistry
	engine  *gin.Engine
	queue   chan job
}

func New(cfg *Config, st store.Store, rn *runner.Runner, logger *zap.Logger, metrics *observability.MetricsRegistry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetricsRegistry()
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		runner:  rn,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan job, cfg.QueueSize),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", s.handleMetrics)

	api := engine.Group("/api/v1")
	api.PUT("/workflows/:name", s.handlePutWorkflow)
	api.GET("/workflows", s.handleListWorkflows)
	api.POST("/events", s.handleEvent)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/logs", s.handleGetRunLogs)

	s.engine = engine
	return s
}

// Router exposes the HTTP handler, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Start runs the worker and the HTTP listener until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.runWorker(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.engine,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("server listening", zap.Int("port", s.cfg.Port))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// runWorker drains the queue one job at a time. The machine is exclusively
// owned by the running job, so there is never more than one in flight.
func (s *Server) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.metrics.Gauge("queue_depth").Dec()
			if _, err := s.runner.Run(ctx, j.wf, j.ev); err != nil {
				s.logger.Error("run aborted",
					zap.String("workflow", j.wf.Name),
					zap.Error(err))
			}
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handlePutWorkflow(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wf, err := workflow.Parse(body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if wf.Name != c.Param("name") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workflow name does not match URL"})
		return
	}
	if err := s.store.PutWorkflow(wf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (s *Server) handleListWorkflows(c *gin.Context) {
	wfs, err := s.store.ListWorkflows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": wfs})
}

func (s *Server) handleEvent(c *gin.Context) {
	var ev models.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ev.Kind != models.EventPush && ev.Kind != models.EventPullRequest {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown event kind %q", ev.Kind)})
		return
	}
	if ev.Branch == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event branch is required"})
		return
	}

	wfs, err := s.store.ListWorkflows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.metrics.Counter("events_received").Inc()
	queued := []string{}
	for _, wf := range trigger.MatchingWorkflows(wfs, ev) {
		select {
		case s.queue <- job{wf: wf, ev: ev}:
			s.metrics.Gauge("queue_depth").Inc()
			queued = append(queued, wf.Name)
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run queue is full"})
			return
		}
	}
	if len(queued) == 0 {
		c.JSON(http.StatusOK, gin.H{"queued": queued})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(c.Query("workflow"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleGetRunLogs(c *gin.Context) {
	if _, err := s.store.GetRun(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logs, err := s.store.GetRunLogs(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
