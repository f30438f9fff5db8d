package orchestrator

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"architect-assistant/internal/metrics"
	"architect-assistant/models"
	"architect-assistant/provider"
	"architect-assistant/router"
	"architect-assistant/session"
	"architect-assistant/session/session_models"
	"architect-assistant/tools/docload"
	"architect-assistant/tools/embedding"
	"architect-assistant/tools/splitter"
	"architect-assistant/tools/web_fetch"
	"architect-assistant/tools/web_search"
)

// Router is the routing oracle consulted when no mode is forced.
type Router interface {
	Route(ctx context.Context, message string, hasDocument bool) models.RouteDecision
}

// Config carries the orchestration knobs, resolved at wiring time.
type Config struct {
	DefaultTimeout time.Duration
	SessionTTL     time.Duration
	SystemPrompt   string
	SearchResults  int
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	PreviewChars   int
	Hybrid         bool
}

// Orchestrator resolves the mode for each message, dispatches to the
// matching strategy and assembles the unified reply. All in-domain
// failures degrade to a chat-style answer; nothing propagates.
type Orchestrator struct {
	cfg      Config
	llm      provider.Provider
	router   Router
	searcher web_search.WebSearcher
	fetcher  web_fetch.WebFetcher
	embedder *embedding.Embedding
	sessions session.Store
	logger   *zerolog.Logger
}

// Reply is the unified response of every strategy. ModeUsed may differ
// from the resolved mode when a degradation occurred; that divergence
// is reported, never hidden.
type Reply struct {
	Answer          string
	ModeUsed        models.Mode
	ModeExplanation string
	Sources         []string
}

// UploadResult mirrors the upload endpoint contract.
type UploadResult struct {
	Status  string
	Chunks  int
	Message string
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func New(cfg Config, llm provider.Provider, rt Router, searcher web_search.WebSearcher,
	fetcher web_fetch.WebFetcher, embedder *embedding.Embedding, sessions session.Store,
	logger *zerolog.Logger) *Orchestrator {

	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	if cfg.SearchResults <= 0 {
		cfg.SearchResults = 5
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 100
	}
	return &Orchestrator{
		cfg:      cfg,
		llm:      llm,
		router:   rt,
		searcher: searcher,
		fetcher:  fetcher,
		embedder: embedder,
		sessions: sessions,
		logger:   logger,
	}
}

// SmartChat resolves the mode (honoring a valid forced mode), runs the
// strategy and returns the unified reply. It never returns an error;
// the worst case is the generic fallback answer.
func (o *Orchestrator) SmartChat(ctx context.Context, sessionID, message, forceMode string) (reply Reply) {
	start := time.Now()
	resolved := models.ModeChat
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Str("session_id", sessionID).Msg("smart chat panicked")
			reply = fallbackReply()
		}
		metrics.ObserveSmartChat(string(resolved), string(reply.ModeUsed), time.Since(start))
	}()

	sess, err := o.sessions.EnsureSession(sessionID, o.cfg.SessionTTL)
	if err != nil {
		o.logger.Error().Err(err).Msg("session store failed")
		return fallbackReply()
	}

	dec := o.resolveMode(ctx, sess, message, forceMode)
	resolved = dec.Mode
	o.logger.Debug().
		Str("session_id", sess.ID()).
		Str("mode", string(dec.Mode)).
		Bool("forced", forceMode != "").
		Msg("mode resolved")

	switch dec.Mode {
	case models.ModeWebSearch:
		return o.webAnswer(ctx, message)
	case models.ModeRAG:
		return o.ragAnswer(ctx, sess, message)
	default:
		answer, err := o.chat(ctx, sess, message)
		if err != nil {
			o.logger.Warn().Err(err).Msg("chat generation failed")
			return fallbackReply()
		}
		return Reply{Answer: answer, ModeUsed: models.ModeChat, ModeExplanation: dec.Explanation}
	}
}

// resolveMode applies the caller override, or consults the router. A
// forced mode bypasses the router entirely, so its explanation is
// derived from the mode itself.
func (o *Orchestrator) resolveMode(ctx context.Context, sess session.Session, message, forceMode string) models.RouteDecision {
	if forceMode != "" {
		if m, ok := models.ParseMode(forceMode); ok {
			return models.RouteDecision{Mode: m, Explanation: router.Explanation(m)}
		}
	}
	return o.router.Route(ctx, message, sess.HasIndex())
}

// Chat runs the history-aware chat strategy for the standalone /chat
// endpoint.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, message string) (string, error) {
	sess, err := o.sessions.EnsureSession(sessionID, o.cfg.SessionTTL)
	if err != nil {
		return "", err
	}
	return o.chat(ctx, sess, message)
}

func (o *Orchestrator) chat(ctx context.Context, sess session.Session, message string) (string, error) {
	turns := make([]models.Turn, 0, len(sess.Turns())+2)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Content: o.cfg.SystemPrompt})
	turns = append(turns, sess.Turns()...)
	turns = append(turns, models.Turn{Role: models.RoleUser, Content: message})

	ctx, cancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer cancel()
	answer, err := o.llm.Chat(ctx, turns)
	if err != nil {
		return "", err
	}

	sess.AppendTurn(models.Turn{Role: models.RoleUser, Content: message})
	sess.AppendTurn(models.Turn{Role: models.RoleAssistant, Content: answer})
	return answer, nil
}

// WebAnswer runs the web-augmented strategy for the standalone
// /web_search endpoint.
func (o *Orchestrator) WebAnswer(ctx context.Context, message string) Reply {
	return o.webAnswer(ctx, message)
}

func (o *Orchestrator) webAnswer(ctx context.Context, message string) Reply {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer cancel()
	results, err := o.searcher.Discover(sctx, message, o.cfg.SearchResults)
	if err != nil || len(results) == 0 {
		if err != nil {
			o.logger.Warn().Err(err).Msg("web search failed")
		}
		metrics.Degraded("no_search_result")
		return Reply{
			Answer:          "Web search returned no results. Answering from assistant knowledge instead.",
			ModeUsed:        models.ModeChat,
			ModeExplanation: "Web search failed, assistant answering",
		}
	}
	first := results[0]

	page, err := o.fetcher.Exec(ctx, first.URL)
	if err != nil {
		o.logger.Warn().Err(err).Str("url", first.URL).Msg("page fetch failed")
	}
	if page.Text == "" {
		// Snippet-only answer, no generation call.
		metrics.Degraded("empty_fetched_content")
		answer := fmt.Sprintf("**%s**\n\n%s\n\n%s", first.Title, first.Snippet, first.URL)
		return Reply{
			Answer:          answer,
			ModeUsed:        models.ModeWebSearch,
			ModeExplanation: router.Explanation(models.ModeWebSearch),
			Sources:         []string{first.URL},
		}
	}

	gctx, gcancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer gcancel()
	answer, err := o.llm.Generate(gctx, webPrompt(page.Text, message, first.URL))
	if err != nil {
		o.logger.Warn().Err(err).Msg("web answer generation failed")
		metrics.Degraded("generation_failure")
		return fallbackReply()
	}

	return Reply{
		Answer:          fmt.Sprintf("%s\n\nSource: [%s](%s)", answer, first.Title, first.URL),
		ModeUsed:        models.ModeWebSearch,
		ModeExplanation: router.Explanation(models.ModeWebSearch),
		Sources:         []string{first.URL},
	}
}

// RAGAnswer runs the retrieval strategy for the standalone /rag/query
// endpoint.
func (o *Orchestrator) RAGAnswer(ctx context.Context, sessionID, message string) Reply {
	sess, err := o.sessions.GetSession(sessionID)
	if err != nil || sess == nil {
		return noDocumentReply()
	}
	return o.ragAnswer(ctx, sess, message)
}

func (o *Orchestrator) ragAnswer(ctx context.Context, sess session.Session, message string) Reply {
	if !sess.HasIndex() {
		metrics.Degraded("no_document")
		return noDocumentReply()
	}

	ectx, cancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer cancel()
	qvec, err := o.embedder.EmbedOne(ectx, message)
	if err != nil {
		o.logger.Warn().Err(err).Msg("query embedding failed")
		metrics.Degraded("generation_failure")
		return fallbackReply()
	}

	hits := sess.VectorSearch(qvec, o.cfg.TopK)
	if o.cfg.Hybrid {
		if bm, err := sess.Bm25Search(message, o.cfg.TopK); err == nil && len(bm) > 0 {
			hits = sess.FuseRRF(hits, bm, o.cfg.TopK)
		}
	}
	if len(hits) == 0 {
		return Reply{
			Answer:          "No relevant information was found in the document.",
			ModeUsed:        models.ModeRAG,
			ModeExplanation: router.Explanation(models.ModeRAG),
			Sources:         []string{},
		}
	}

	contexts := make([]string, 0, len(hits))
	for _, h := range hits {
		contexts = append(contexts, h.Text)
	}

	gctx, gcancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer gcancel()
	answer, err := o.llm.Generate(gctx, ragPrompt(strings.Join(contexts, "\n\n"), message))
	if err != nil {
		o.logger.Warn().Err(err).Msg("rag generation failed")
		metrics.Degraded("generation_failure")
		return fallbackReply()
	}

	sources := make([]string, 0, len(hits))
	for _, h := range hits {
		sources = append(sources, preview(h.Text, o.cfg.PreviewChars))
	}
	return Reply{
		Answer:          answer,
		ModeUsed:        models.ModeRAG,
		ModeExplanation: router.Explanation(models.ModeRAG),
		Sources:         sources,
	}
}

// Upload extracts, chunks, embeds and indexes a document, replacing
// any previous index for the session. All failures surface as a
// structured error result, never as an error value.
func (o *Orchestrator) Upload(ctx context.Context, sessionID, filename string, file io.Reader) UploadResult {
	format, ok := docload.ParseFormat(filename)
	if !ok {
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Unsupported file format"}
	}

	tmp, err := os.CreateTemp("", "upload-*."+string(format))
	if err != nil {
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Could not store the uploaded file"}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Could not store the uploaded file"}
	}
	tmp.Close()

	texts, err := docload.Load(tmpPath, format)
	if err != nil {
		o.logger.Warn().Err(err).Str("filename", filename).Msg("document extraction failed")
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Could not read the uploaded file"}
	}

	chunks := splitter.Split(texts, o.cfg.ChunkSize, o.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "No text could be extracted from the file"}
	}

	ectx, cancel := context.WithTimeout(ctx, o.cfg.DefaultTimeout)
	defer cancel()
	vectors, err := o.embedder.EmbedMany(ectx, chunks)
	if err != nil {
		o.logger.Warn().Err(err).Msg("chunk embedding failed")
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Failed to index the document"}
	}

	sess, err := o.sessions.EnsureSession(sessionID, o.cfg.SessionTTL)
	if err != nil {
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Failed to index the document"}
	}

	hash := sha1Hex(strings.Join(texts, "\n"))
	now := time.Now()
	docChunks := make([]session_models.DocChunk, 0, len(chunks))
	for i, text := range chunks {
		docChunks = append(docChunks, session_models.DocChunk{
			DocID:      fmt.Sprintf("%s#%03d", hash, i),
			Source:     filename,
			Text:       text,
			ChunkIndex: i,
			SessionID:  sess.ID(),
			IngestedAt: now,
		})
	}
	if err := sess.ReplaceIndex(docChunks, vectors); err != nil {
		o.logger.Error().Err(err).Msg("index replace failed")
		metrics.UploadObserved(StatusError)
		return UploadResult{Status: StatusError, Chunks: 0, Message: "Failed to index the document"}
	}

	metrics.UploadObserved(StatusSuccess)
	return UploadResult{
		Status:  StatusSuccess,
		Chunks:  len(chunks),
		Message: fmt.Sprintf("%s uploaded successfully. %d chunks created.", filename, len(chunks)),
	}
}

func noDocumentReply() Reply {
	return Reply{
		Answer:          "No document has been uploaded yet. Please upload a file first.",
		ModeUsed:        models.ModeChat,
		ModeExplanation: "No document found",
	}
}

func fallbackReply() Reply {
	return Reply{
		Answer:          "Something went wrong, please try again.",
		ModeUsed:        models.ModeChat,
		ModeExplanation: "Error",
	}
}

// preview truncates to n characters, not bytes, so multi-byte runes
// stay intact.
func preview(text string, n int) string {
	if r := []rune(text); len(r) > n {
		text = string(r[:n])
	}
	return text + "..."
}

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

func webPrompt(content, question, sourceURL string) string {
	return fmt.Sprintf(`Answer the user's question based on the web page content below.
Write a fluent answer and mention the source.

WEB PAGE CONTENT:
%s

USER QUESTION: %s

SOURCE: %s

ANSWER:`, content, question, sourceURL)
}

func ragPrompt(context, question string) string {
	return fmt.Sprintf(`Answer the user's question using the context below.
Base the answer only on the given context. If the context does not
contain the information, say "This information was not found in the document".

CONTEXT:
%s

QUESTION: %s

ANSWER:`, context, question)
}
