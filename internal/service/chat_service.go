package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/llm"
	"github.com/noah-isme/admissions-crm-api/pkg/news"
	"github.com/noah-isme/admissions-crm-api/pkg/scraper"
)

const (
	summarizePrompt = "Summarize the following web page content for a prospective student. " +
		"Focus only on academic and institutional information such as courses, admissions, eligibility, fees, deadlines, contacts, and announcements. " +
		"Ignore navigation, advertisements, and unrelated content."

	contextualPromptFormat = "You are an admissions assistant. Answer using ONLY the scraped website text below, captured at %s from %s. " +
		"You do not have live internet access; never claim to have checked the site live. " +
		"If the text contains no updates relevant to the question, say so.\n\nScraped text:\n%s"

	refinePrompt = "Rewrite the following assistant response according to the user's instruction. " +
		"Use only information present in the response.\n\nResponse:\n"

	timePromptFormat = "The current date and time is %s (%s timezone). Tell the user the current time in one friendly sentence."

	newsPrompt = "Summarize these news headlines for a prospective student in a few short bullet points. " +
		"Mention the source of each item.\n\nHeadlines:\n"

	newsLimit = 5
)

type providerResolver interface {
	Resolve(selector string) (llm.Provider, llm.Options)
}

type pageScraper interface {
	Scrape(ctx context.Context, pageURL string) (*scraper.Result, error)
}

type newsSearcher interface {
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]news.Article, error)
}

type scrapeStore interface {
	Get(ctx context.Context, sessionID string) *models.ScrapeContext
	Put(ctx context.Context, sc models.ScrapeContext)
}

type timeSource interface {
	Now() time.Time
	Info() models.TimeInfo
}

type chatMetrics interface {
	RecordChatIntent(intent string)
	ObserveProviderCall(provider string, err error, duration time.Duration)
	RecordScrape(source string)
}

// turn is the routing state for one chat request.
type turn struct {
	sessionID     string
	selector      string
	transcript    []models.ChatMessage
	utterance     string
	raw           string
	target        string
	prevAssistant string
	prevUser      string

	scrape       *models.ScrapeContext
	scrapeLoaded bool
}

// route pairs an intent predicate with its handler. Routes are evaluated in order
// and the first match answers.
type route struct {
	name   string
	match  func(ctx context.Context, t *turn) bool
	handle func(ctx context.Context, t *turn) string
}

// ChatService classifies the last user utterance and produces one assistant reply.
type ChatService struct {
	providers providerResolver
	scraper   pageScraper
	news      newsSearcher
	cache     scrapeStore
	clock     timeSource
	metrics   chatMetrics
	logger    *zap.Logger
	routes    []route
}

// NewChatService wires the router. headlines may be nil.
func NewChatService(providers providerResolver, pages pageScraper, headlines newsSearcher, cache scrapeStore, clock timeSource, metrics chatMetrics, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ChatService{
		providers: providers,
		scraper:   pages,
		news:      headlines,
		cache:     cache,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
	s.routes = s.buildRoutes()
	return s
}

func (s *ChatService) buildRoutes() []route {
	return []route{
		{IntentGreeting, func(_ context.Context, t *turn) bool { return isGreeting(t.utterance) }, s.handleGreeting},
		{IntentHelp, func(_ context.Context, t *turn) bool { return isHelpRequest(t.utterance, t.prevAssistant) }, s.handleHelp},
		{IntentAcknowledgment, func(_ context.Context, t *turn) bool { return isAcknowledgment(t.utterance) }, s.handleAcknowledgment},
		{IntentClosing, func(_ context.Context, t *turn) bool { return isClosing(t.utterance) }, s.handleClosing},
		{IntentTime, func(_ context.Context, t *turn) bool { return isTimeQuery(t.utterance) }, s.handleTime},
		{IntentContextualUpdate, s.matchContextualUpdate, s.handleContextualUpdate},
		{IntentRefinement, func(_ context.Context, t *turn) bool {
			return isRefinement(t.utterance, immediatePrevAssistant(t.transcript))
		}, s.handleRefinement},
		{IntentScrape, func(_ context.Context, t *turn) bool { return t.target != "" }, s.handleScrape},
		{IntentOffTopic, func(_ context.Context, t *turn) bool { return isOffTopic(t.utterance) }, s.handleOffTopic},
		{IntentNews, func(_ context.Context, t *turn) bool {
			return s.news != nil && s.news.Enabled() && isNewsQuery(t.utterance)
		}, s.handleNews},
		{IntentGeneral, func(_ context.Context, _ *turn) bool { return true }, s.handleGeneral},
	}
}

// Reply answers the transcript. Upstream failures become placeholder text; only an
// unusable request is an error.
func (s *ChatService) Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "messages are required")
	}
	last := req.Messages[len(req.Messages)-1]
	raw := strings.TrimSpace(last.Content)
	if last.Role != models.ChatRoleUser || raw == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the last message must be a non-empty user message")
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	t := &turn{
		sessionID:  sessionID,
		selector:   req.Model,
		transcript: req.Messages,
		utterance:  normalizeUtterance(raw),
		raw:        raw,
		target:     scrapeTarget(req.Scrape, raw),
	}
	t.prevAssistant, t.prevUser = lastMessages(req.Messages)

	for _, r := range s.routes {
		if !r.match(ctx, t) {
			continue
		}
		reply := r.handle(ctx, t)
		if s.metrics != nil {
			s.metrics.RecordChatIntent(r.name)
		}
		return &models.ChatResponse{
			Choices:   []models.ChatChoice{{Message: models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply}}},
			Intent:    r.name,
			SessionID: sessionID,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrInternal, "no chat route matched")
}

func (s *ChatService) handleGreeting(_ context.Context, _ *turn) string {
	return GreetingReply
}

func (s *ChatService) handleHelp(_ context.Context, t *turn) string {
	if isRepeatedHelp(t.utterance, t.prevAssistant, t.prevUser) {
		return HelpRedirectReply
	}
	return HelpReply
}

func (s *ChatService) handleAcknowledgment(_ context.Context, t *turn) string {
	return acknowledgmentReply(t.transcript)
}

func (s *ChatService) handleClosing(_ context.Context, _ *turn) string {
	return ClosingReply
}

func (s *ChatService) handleOffTopic(_ context.Context, _ *turn) string {
	return RefusalReply
}

func (s *ChatService) handleTime(ctx context.Context, t *turn) string {
	info := s.clock.Info()
	readable := s.clock.Now().Format("Monday, 2 January 2006 15:04")
	prompt := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(timePromptFormat, readable, info.TimeZone)},
		{Role: llm.RoleUser, Content: t.raw},
	}
	reply, err := s.complete(ctx, t, prompt)
	if err != nil {
		return fmt.Sprintf("It is currently %s (%s).", readable, info.TimeZone)
	}
	return reply
}

// sessionScrape loads the session's scrape context once per turn.
func (s *ChatService) sessionScrape(ctx context.Context, t *turn) *models.ScrapeContext {
	if !t.scrapeLoaded {
		t.scrape = s.cache.Get(ctx, t.sessionID)
		t.scrapeLoaded = true
	}
	return t.scrape
}

// matchContextualUpdate asks about updates against the cached page. Without a cached
// page only an explicit reference to a site qualifies; anything else falls through
// to the general route.
func (s *ChatService) matchContextualUpdate(ctx context.Context, t *turn) bool {
	if t.target != "" || !isContextualUpdate(t.utterance) {
		return false
	}
	if !s.sessionScrape(ctx, t).Empty() {
		return true
	}
	return refersToSite(t.utterance)
}

func (s *ChatService) handleContextualUpdate(ctx context.Context, t *turn) string {
	sc := s.sessionScrape(ctx, t)
	if sc.Empty() {
		return NoContextReply
	}
	prompt := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(contextualPromptFormat, sc.ScrapedAt.UTC().Format(time.RFC3339), sc.URL, sc.Content)},
		{Role: llm.RoleUser, Content: t.raw},
	}
	return s.completeOrFallback(ctx, t, prompt)
}

func (s *ChatService) handleRefinement(ctx context.Context, t *turn) string {
	prompt := []llm.Message{
		{Role: llm.RoleSystem, Content: refinePrompt + immediatePrevAssistant(t.transcript)},
		{Role: llm.RoleUser, Content: t.raw},
	}
	return s.completeOrFallback(ctx, t, prompt)
}

// handleScrape always overwrites the session cache with what was extracted, even when
// nothing was.
func (s *ChatService) handleScrape(ctx context.Context, t *turn) string {
	text, source := "", "failed"
	result, err := s.scraper.Scrape(ctx, t.target)
	if err != nil {
		s.logger.Warn("scrape failed", zap.String("url", t.target), zap.Error(err))
	} else {
		text, source = strings.TrimSpace(result.Text), result.Source
	}
	if s.metrics != nil {
		s.metrics.RecordScrape(source)
	}

	s.cache.Put(ctx, models.ScrapeContext{
		SessionID: t.sessionID,
		URL:       t.target,
		Content:   text,
		ScrapedAt: s.clock.Now(),
	})

	if text == "" {
		return fmt.Sprintf(couldNotRetrieveFormat, t.target)
	}
	prompt := []llm.Message{
		{Role: llm.RoleSystem, Content: summarizePrompt + "\n\nPage URL: " + t.target + "\n\nPage content:\n" + text},
		{Role: llm.RoleUser, Content: t.raw},
	}
	return s.completeOrFallback(ctx, t, prompt)
}

func (s *ChatService) handleNews(ctx context.Context, t *turn) string {
	articles, err := s.news.Search(ctx, newsQuery(t.utterance), newsLimit)
	if err != nil {
		s.logger.Warn("news search failed", zap.Error(err))
		return NoNewsReply
	}
	if len(articles) == 0 {
		return NoNewsReply
	}

	var list strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&list, "- %s (%s) %s\n", a.Title, a.Source, a.URL)
	}
	prompt := []llm.Message{
		{Role: llm.RoleSystem, Content: newsPrompt + list.String()},
		{Role: llm.RoleUser, Content: t.raw},
	}
	reply, err := s.complete(ctx, t, prompt)
	if err != nil {
		return "Here are the latest headlines:\n" + strings.TrimRight(list.String(), "\n")
	}
	return reply
}

func (s *ChatService) handleGeneral(ctx context.Context, t *turn) string {
	transcript := make([]llm.Message, len(t.transcript))
	for i, m := range t.transcript {
		transcript[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return s.completeOrFallback(ctx, t, transcript)
}

func (s *ChatService) completeOrFallback(ctx context.Context, t *turn, transcript []llm.Message) string {
	reply, err := s.complete(ctx, t, transcript)
	if err != nil {
		return UpstreamFallbackReply
	}
	return reply
}

func (s *ChatService) complete(ctx context.Context, t *turn, transcript []llm.Message) (string, error) {
	provider, opts := s.providers.Resolve(t.selector)
	start := time.Now()
	reply, err := provider.SendChat(ctx, transcript, opts)
	if s.metrics != nil {
		s.metrics.ObserveProviderCall(provider.Name(), err, time.Since(start))
	}
	if err != nil {
		s.logger.Warn("chat provider failed",
			zap.String("provider", provider.Name()),
			zap.String("model", opts.Model),
			zap.String("session_id", t.sessionID),
			zap.Error(err),
		)
		return "", err
	}
	return reply, nil
}
