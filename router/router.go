package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"architect-assistant/models"
	"architect-assistant/provider"
)

// SemanticRouter classifies each message into one of the three
// response modes using the LLM as a best-effort oracle. It never
// returns an error: any failure or unparseable reply falls back to
// chat, and rag is downgraded to chat when no document is indexed.
type SemanticRouter struct {
	llm     provider.Provider
	timeout time.Duration
	logger  *zerolog.Logger
}

func New(llm provider.Provider, timeout time.Duration, logger *zerolog.Logger) *SemanticRouter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SemanticRouter{llm: llm, timeout: timeout, logger: logger}
}

// Route analyzes the message and picks the mode to handle it.
func (r *SemanticRouter) Route(ctx context.Context, message string, hasDocument bool) models.RouteDecision {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.llm.Generate(ctx, classificationPrompt(message, hasDocument))
	if err != nil {
		r.logger.Warn().Err(err).Msg("router classification failed, defaulting to chat")
		return decision(models.ModeChat)
	}

	mode := normalize(reply)
	if !mode.Valid() {
		return decision(models.ModeChat)
	}
	// rag is only usable when a document is actually indexed
	if mode == models.ModeRAG && !hasDocument {
		return decision(models.ModeChat)
	}
	return decision(mode)
}

func decision(mode models.Mode) models.RouteDecision {
	return models.RouteDecision{Mode: mode, Explanation: Explanation(mode)}
}

// normalize extracts the mode token from a free-text model reply. The
// model sometimes prepends commentary, so only the first token counts;
// anything unrecognized maps to the empty (invalid) mode.
func normalize(reply string) models.Mode {
	route := strings.ToLower(strings.TrimSpace(reply))
	fields := strings.Fields(route)
	if len(fields) == 0 {
		return models.ModeChat
	}
	return models.Mode(strings.Trim(fields[0], ".,!?"))
}

// Explanation returns the user-visible note for a mode.
func Explanation(mode models.Mode) string {
	switch mode {
	case models.ModeWebSearch:
		return "Searching the web"
	case models.ModeRAG:
		return "Searching the uploaded document"
	case models.ModeChat:
		return "Answering from assistant knowledge"
	}
	return "Answering"
}

func classificationPrompt(message string, hasDocument bool) string {
	ragContext := ""
	if hasDocument {
		ragContext = "The user HAS an uploaded document. "
	}
	return fmt.Sprintf(`Analyze the user's message and decide which mode should handle it.

MODES:
- chat: general software/architecture questions, concept explanations, code examples, theory
- web_search: questions needing current information (this year, latest, recent, new, trends, news, comparisons)
- rag: %squestions referencing a document or file (in the file, in the document, the one I uploaded)

RULES:
1. Questions about current dates/years, today's date, or event lookups -> web_search
2. Questions like "best", "compare", "which would you recommend" -> web_search
3. A file/document reference AND an uploaded document -> rag
4. General concept explanations or code examples -> chat

MESSAGE: %s

Reply with EXACTLY ONE of these words and nothing else: chat, web_search, rag`, ragContext, message)
}
