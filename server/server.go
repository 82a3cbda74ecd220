package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/voicedeskai/voicedesk/agent/audit"
	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/tools"
)

type Config struct {
	Port int `envconfig:"PORT" default:"8080"`
}

// Server exposes call lifecycle and tool dispatch over HTTP. It is the
// transport shell around the decision core; all call-state rules live in
// the store and the dispatcher, not here.
type Server struct {
	store      *callctx.Store
	dispatcher *tools.Dispatcher
	archiver   audit.Archiver
	port       int

	now func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithArchiver persists the final snapshot of every ended call.
func WithArchiver(archiver audit.Archiver) Option {
	return func(s *Server) {
		if archiver != nil {
			s.archiver = archiver
		}
	}
}

func New(store *callctx.Store, dispatcher *tools.Dispatcher, cfg Config, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("call context store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	port := cfg.Port
	if port <= 0 {
		port = 8080
	}
	s := &Server{
		store:      store,
		dispatcher: dispatcher,
		archiver:   audit.NoopArchiver{},
		port:       port,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	calls := router.Group("/calls")
	{
		calls.POST("", s.handleStartCall)
		calls.GET("/:id", s.handleGetCall)
		calls.DELETE("/:id", s.handleEndCall)
		calls.POST("/:id/tools", s.handleDispatch)
	}
	return router
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Info().Str("addr", addr).Msg("http server listening")
	return s.Router().Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStartCall(c *gin.Context) {
	callID := uuid.NewString()
	snapshot, err := s.store.Start(callID, s.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("call_id", callID).Msg("call started")
	c.JSON(http.StatusCreated, snapshot)
}

func (s *Server) handleGetCall(c *gin.Context) {
	snapshot, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// handleEndCall is idempotent: ending an unknown or already-ended call
// succeeds with no effect, matching hangup semantics. The final snapshot
// is archived off the request path, best effort.
func (s *Server) handleEndCall(c *gin.Context) {
	callID := c.Param("id")

	snapshot, err := s.store.Get(callID)
	s.store.End(callID)
	if err == nil {
		go s.archive(snapshot)
	}

	log.Info().Str("call_id", callID).Msg("call ended")
	c.Status(http.StatusNoContent)
}

func (s *Server) archive(snapshot callctx.CallContext) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.archiver.Archive(ctx, snapshot); err != nil {
		log.Warn().Err(err).Str("call_id", snapshot.CallID).Msg("call archive failed")
	}
}

func (s *Server) handleDispatch(c *gin.Context) {
	var req contract.Request
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.CallID = c.Param("id")

	resp, err := s.dispatcher.Dispatch(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, callctx.ErrUnknownCall):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, contract.ErrUnknownOperation),
		errors.Is(err, contract.ErrMissingArgs),
		errors.Is(err, contract.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("call_id", req.CallID).Msg("tool dispatch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
