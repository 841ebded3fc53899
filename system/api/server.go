package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/timewave-computer/causality/domain/effect"
	"github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/infrastructure/metrics"
	"github.com/timewave-computer/causality/infrastructure/resilience"
	"github.com/timewave-computer/causality/system/coordinator"
	"github.com/timewave-computer/causality/system/executor"
	"github.com/timewave-computer/causality/system/registry"
	"github.com/timewave-computer/causality/system/zk"
)

// Server is the admin HTTP surface: submit an effect program, fetch its
// TegResult, request and fetch a composite proof. Grounded on the
// teacher's applications/httpapi handler bundle, reworked onto gin per
// the domain stack's gin-gonic/gin wiring.
type Server struct {
	engine  *gin.Engine
	reg     *hash.Registry
	sys     *registry.SystemContext
	exec    *executor.Executor
	coord   *coordinator.Coordinator
	store   *store
	limiter *resilience.Limiter
	log     *zap.Logger
	hub     *eventHub
}

// Config tunes a Server's rate limiting.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a moderate admin-surface rate limit.
func DefaultConfig() Config {
	return Config{RequestsPerSecond: 50, Burst: 100}
}

// NewServer assembles the gin engine and its routes over sys, exec and
// coord. log may be nil for a no-op logger.
func NewServer(cfg Config, sys *registry.SystemContext, exec *executor.Executor, coord *coordinator.Coordinator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	hub := newEventHub()
	s := &Server{
		engine:  gin.New(),
		reg:     sys.Hash,
		sys:     sys,
		exec:    exec,
		coord:   coord,
		store:   newStore(hub),
		limiter: resilience.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		log:     log,
		hub:     hub,
	}
	s.engine.Use(gin.Recovery(), s.rateLimit(), s.metricsMiddleware())
	s.routes()
	return s
}

// Handler returns the server's http.Handler, mountable under any prefix.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		outcome := "ok"
		if c.Writer.Status() >= http.StatusBadRequest {
			outcome = "error"
		}
		metrics.APIRequests.WithLabelValues(c.FullPath(), outcome).Inc()
	}
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/programs", s.submitProgram)
	v1.GET("/programs/:id/result", s.getResult)
	v1.POST("/programs/:id/proof", s.generateProof)
	v1.GET("/programs/:id/proof", s.getProof)
	v1.GET("/events", s.hub.serveWS)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (s *Server) submitProgram(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	effects, err := req.toEffects()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	graph, err := effect.Build(s.reg, effects)
	if err != nil {
		apiErr := errors.Validation("effects", err.Error())
		s.log.Warn("rejecting program with invalid effect graph", zap.String("id", req.ID), zap.Error(apiErr))
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Error()})
		return
	}

	s.store.create(req.ID, graph)

	go func(id string, g *effect.Graph) {
		result := s.exec.Execute(context.Background(), g)
		s.store.setResult(id, result)
	}(req.ID, graph)

	c.JSON(http.StatusAccepted, SubmitResponse{ID: req.ID, NodeCount: len(graph.Nodes)})
}

func (s *Server) getResult(c *gin.Context) {
	id := c.Param("id")
	r, ok := s.store.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown program id"})
		return
	}
	result, ready := r.snapshotResult()
	if !ready {
		c.JSON(http.StatusAccepted, gin.H{"status": "running"})
		return
	}
	c.JSON(http.StatusOK, toResultResponse(id, result))
}

func (s *Server) generateProof(c *gin.Context) {
	id := c.Param("id")
	r, ok := s.store.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown program id"})
		return
	}

	var req ProveRequest
	_ = c.ShouldBindJSON(&req)
	if req.Timestamp == 0 {
		req.Timestamp = time.Now().UnixNano()
	}

	effects := make([]*effect.Effect, 0, len(r.graph.Order))
	for _, nodeID := range r.graph.Order {
		effects = append(effects, r.graph.Nodes[nodeID].Effect)
	}
	instructions := instructionsFromEffects(effects)
	global := zk.NewWitness(uint32(len(instructions)), req.Timestamp, nil, nil, nil)

	composite, err := s.coord.GenerateComposite(c.Request.Context(), id, instructions, partitionStrategyByName(req.Strategy), global, req.Timestamp)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	s.store.setComposite(id, composite)
	c.JSON(http.StatusOK, toProofResponse(id, composite))
}

func (s *Server) getProof(c *gin.Context) {
	id := c.Param("id")
	r, ok := s.store.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown program id"})
		return
	}
	proof, ready := r.snapshotComposite()
	if !ready {
		c.JSON(http.StatusNotFound, gin.H{"error": "no proof generated for this program yet"})
		return
	}
	c.JSON(http.StatusOK, toProofResponse(id, proof))
}
