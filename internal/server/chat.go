package server

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"architect-assistant/internal/orchestrator"
)

// Assistant is the orchestration surface the handlers depend on.
type Assistant interface {
	SmartChat(ctx context.Context, sessionID, message, forceMode string) orchestrator.Reply
	Chat(ctx context.Context, sessionID, message string) (string, error)
	WebAnswer(ctx context.Context, message string) orchestrator.Reply
	RAGAnswer(ctx context.Context, sessionID, message string) orchestrator.Reply
	Upload(ctx context.Context, sessionID, filename string, file io.Reader) orchestrator.UploadResult
}

type ChatHandler struct {
	Assistant Assistant
}

// orEmpty keeps the sources field a JSON array on every reply; clients
// get [] rather than a missing key or null.
func orEmpty(sources []string) []string {
	if sources == nil {
		return []string{}
	}
	return sources
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/smart_chat", h.smartChat)
	g.POST("/chat", h.chat)
	g.POST("/web_search", h.webSearch)
	g.POST("/rag/query", h.ragQuery)
	g.POST("/rag/upload", h.ragUpload)
}

func (h *ChatHandler) smartChat(c echo.Context) error {
	var req SmartChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply := h.Assistant.SmartChat(c.Request().Context(), req.SessionID, req.Message, req.ForceMode)
	return c.JSON(http.StatusOK, SmartChatResponse{
		Answer:          reply.Answer,
		ModeUsed:        string(reply.ModeUsed),
		ModeExplanation: reply.ModeExplanation,
		Sources:         orEmpty(reply.Sources),
		SessionID:       req.SessionID,
	})
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	answer, err := h.Assistant.Chat(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ChatResponse{Answer: answer, SessionID: req.SessionID})
}

func (h *ChatHandler) webSearch(c echo.Context) error {
	var req WebSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	reply := h.Assistant.WebAnswer(c.Request().Context(), req.Message)
	return c.JSON(http.StatusOK, WebSearchResponse{Answer: reply.Answer, Sources: orEmpty(reply.Sources)})
}

func (h *ChatHandler) ragQuery(c echo.Context) error {
	var req RAGQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	reply := h.Assistant.RAGAnswer(c.Request().Context(), req.SessionID, req.Message)
	return c.JSON(http.StatusOK, RAGQueryResponse{
		Answer:  reply.Answer,
		Mode:    string(reply.ModeUsed),
		Sources: orEmpty(reply.Sources),
	})
}

// ragUpload accepts a multipart form with a "file" part and an optional
// "session_id" field or query param. Processing failures come back as a
// structured
// error result with HTTP 200, matching the other strategy endpoints.
func (h *ChatHandler) ragUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		sessionID = c.QueryParam("session_id")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	res := h.Assistant.Upload(c.Request().Context(), sessionID, fh.Filename, f)
	return c.JSON(http.StatusOK, RAGUploadResponse{
		Status:  res.Status,
		Chunks:  res.Chunks,
		Message: res.Message,
	})
}
