package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"triage-chatbot/internal/core"
	"triage-chatbot/pkg"
)

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to an http.Server.
type Server struct {
	Chat   *core.ChatService
	Triage *core.TriageService
	Log    *zap.Logger

	engine *gin.Engine
}

// NewServer constructs a Server and registers its routes.
func NewServer(chat *core.ChatService, triage *core.TriageService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{Chat: chat, Triage: triage, Log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/conversations", s.handleCreateConversation)
	api.GET("/conversations/:id", s.handleGetConversation)
	api.POST("/conversations/:id/messages", s.handlePostMessage)
	api.POST("/chat", s.handleChat)
	api.POST("/triage", s.handleTriage)
	api.GET("/triage/:id", s.handleGetTriage)
	api.GET("/specialists/:id", s.handleGetSpecialist)

	s.engine = r
	return s
}

// ServeHTTP dispatches to the gin engine.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// conversationView is the JSON shape of a conversation.
type conversationView struct {
	ID                string                `json:"id"`
	State             pkg.ConversationState `json:"state"`
	Summary           string                `json:"summary,omitempty"`
	Messages          []pkg.Message         `json:"messages"`
	PendingSpecialist *pkg.Specialist       `json:"pending_specialist,omitempty"`
	BoundSpecialist   *pkg.Specialist       `json:"bound_specialist,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func toConversationView(c *pkg.Conversation) conversationView {
	msgs := c.Messages
	if msgs == nil {
		msgs = []pkg.Message{}
	}
	return conversationView{
		ID:                c.ID,
		State:             c.State(),
		Summary:           c.Summary,
		Messages:          msgs,
		PendingSpecialist: c.PendingSpecialist,
		BoundSpecialist:   c.BoundSpecialist,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toChatResponse(res *core.TurnResult) pkg.ChatResponse {
	return pkg.ChatResponse{
		ConversationID:    res.Conversation.ID,
		Reply:             res.Reply,
		State:             res.State(),
		PendingSpecialist: res.Conversation.PendingSpecialist,
		BoundSpecialist:   res.Conversation.BoundSpecialist,
	}
}

func (s *Server) handleCreateConversation(c *gin.Context) {
	conv, err := s.Chat.CreateConversation(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConversationView(conv))
}

func (s *Server) handleGetConversation(c *gin.Context) {
	conv, err := s.Chat.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationView(conv))
}

// handlePostMessage submits a message to an existing conversation.
func (s *Server) handlePostMessage(c *gin.Context) {
	var req pkg.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	s.submit(c, c.Param("id"), req.Message)
}

// handleChat submits a message and creates the conversation on first
// contact when no id is given.
func (s *Server) handleChat(c *gin.Context) {
	var req pkg.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	s.submit(c, strings.TrimSpace(req.ConversationID), req.Message)
}

func (s *Server) submit(c *gin.Context, conversationID, message string) {
	res, err := s.Chat.HandleMessage(c.Request.Context(), conversationID, message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatResponse(res))
}

func (s *Server) handleTriage(c *gin.Context) {
	var req pkg.TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	res, err := s.Triage.Triage(c.Request.Context(), req.Symptoms, strings.TrimSpace(req.ConversationID))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.TriageResponse{
		TriageID:   res.Record.ID,
		Specialty:  res.Record.Specialty,
		Specialist: res.Specialist,
	})
}

func (s *Server) handleGetTriage(c *gin.Context) {
	rec, err := s.Triage.GetTriage(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetSpecialist(c *gin.Context) {
	sp, err := s.Triage.GetSpecialist(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

// writeError maps input and not-found errors to 4xx; everything else is a
// generic 500 so store details do not leak.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyMessage), errors.Is(err, core.ErrEmptySymptoms):
		badRequest(c, err.Error())
	case errors.Is(err, pkg.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
