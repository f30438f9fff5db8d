package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"architect-assistant/config"
	"architect-assistant/internal/logging"
	"architect-assistant/internal/orchestrator"
	"architect-assistant/provider"
	"architect-assistant/router"
	"architect-assistant/session"
	"architect-assistant/session/inmemory"
	"architect-assistant/session/redisstore"
	"architect-assistant/tools/embedding"
	"architect-assistant/tools/web_fetch"
	"architect-assistant/tools/web_search"
)

// Run wires the full service and blocks serving HTTP.
func Run(cfg *config.Config) error {
	logger := logging.New(cfg.General)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Warn().
			Int("status", code).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("remote", c.RealIP()).
			Err(err).
			Msg("request failed")
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
	if err != nil {
		return err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Fetcher), cfg.Fetch.Timeout, cfg.Fetch.MaxChars)
	if err != nil {
		return err
	}
	embedder := embedding.NewEmbedding(llm)

	var sessions session.Store
	switch session.StoreType(cfg.Sessions.Store) {
	case session.RedisStore:
		sessions = redisstore.NewRedisSessionStore(cfg.Sessions.Redis.Addr, cfg.Sessions.Redis.Password, cfg.Sessions.Redis.DB)
	case session.InMemoryStore:
		sessions = inmemory.NewInMemorySessionStore(cfg.Sessions.MaxSessions)
	default:
		return fmt.Errorf("unsupported session store: %q", cfg.Sessions.Store)
	}

	rt := router.New(llm, cfg.General.DefaultTimeout, logger)
	orch := orchestrator.New(orchestrator.Config{
		DefaultTimeout: cfg.General.DefaultTimeout,
		SessionTTL:     cfg.Sessions.TTL,
		SystemPrompt:   cfg.LLM.SystemPrompt,
		SearchResults:  cfg.Search.Results,
		ChunkSize:      cfg.RAG.ChunkSize,
		ChunkOverlap:   cfg.RAG.ChunkOverlap,
		TopK:           cfg.RAG.TopK,
		PreviewChars:   cfg.RAG.PreviewChars,
		Hybrid:         cfg.RAG.Hybrid,
	}, llm, rt, searcher, fetcher, embedder, sessions, logger)

	h := &ChatHandler{Assistant: orch}
	h.Register(e.Group("/api"))

	logger.Info().
		Str("address", cfg.Server.Address).
		Str("llm_provider", cfg.LLM.Provider).
		Str("search_provider", cfg.Search.Provider).
		Str("session_store", cfg.Sessions.Store).
		Msg("assistant server starting")
	return e.Start(cfg.Server.Address)
}
