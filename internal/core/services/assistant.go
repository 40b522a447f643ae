package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// productCacheTTL bounds how stale the product directory may get
// between explicit invalidations.
const productCacheTTL = time.Minute

// AssistantService routes each user message: listing pre-check, intent
// classification, session advance, then product resolution or general
// retrieval, then answer assembly.
type AssistantService struct {
	index      driven.ChunkIndex
	catalog    driven.CatalogStore
	classifier *IntentClassifier
	resolver   *ProductResolver
	assembler  *AnswerAssembler
	sessions   *SessionStore
	profile    domain.SiteProfile
	topK       int
	historyN   int

	dirMu    sync.Mutex
	products []domain.ProductSummary
	loadedAt time.Time
	now      func() time.Time
}

// NewAssistantService wires the request path. The product directory is
// read from catalog; retrieval goes to index.
func NewAssistantService(
	index driven.ChunkIndex,
	catalog driven.CatalogStore,
	resolver *ProductResolver,
	assembler *AnswerAssembler,
	sessions *SessionStore,
	profile domain.SiteProfile,
	settings domain.AppSettings,
) *AssistantService {
	return &AssistantService{
		index:      index,
		catalog:    catalog,
		classifier: NewIntentClassifier(profile),
		resolver:   resolver,
		assembler:  assembler,
		sessions:   sessions,
		profile:    profile,
		topK:       settings.Index.TopK,
		historyN:   settings.Answer.HistoryMessages,
		now:        time.Now,
	}
}

// Ask answers one message in conversationID. Failures on the request
// path become fixed user-facing text; only invalid input is an error.
func (s *AssistantService) Ask(ctx context.Context, conversationID, query string) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	sess := s.sessions.Acquire(conversationID)
	defer sess.Unlock()

	logger.Section("Ask")
	logger.Debug("Conversation %s: %q", conversationID, query)

	history := sess.Recent(s.historyN)
	answer := s.route(ctx, sess, query, history)
	logger.Debug("Intent %s, path %s", answer.Intent, answer.Path)

	sess.Append(domain.RoleUser, query)
	sess.Append(domain.RoleAssistant, answer.Text)
	return answer, nil
}

func (s *AssistantService) route(
	ctx context.Context, sess *Session, query string, history []domain.Message,
) *domain.Answer {
	if s.classifier.IsListingRequest(query) {
		products, err := s.ListProducts(ctx)
		if err != nil {
			logger.Warn("listing: %v", err)
		}
		return &domain.Answer{
			Text:   RenderListing(s.profile.Company, products),
			Intent: domain.GeneralIntent(),
			Path:   domain.AnswerPathListing,
		}
	}

	intent := s.classifier.Classify(query, s.productNames(ctx))
	followUp := s.classifier.IsFollowUp(query)

	// A follow-up that names no product only makes sense while one is
	// remembered.
	promoted := intent.Kind == domain.IntentGeneral && followUp
	if promoted {
		if !sess.State.HasProduct() {
			return needProduct(intent)
		}
		intent = domain.ProductIntent()
	}

	inWindow := sess.State.Advance(intent)
	if promoted && !sess.State.HasProduct() {
		logger.Debug("Follow-up window closed; asking for a product")
		return needProduct(intent)
	}

	if intent.IsProduct() {
		return s.answerProduct(ctx, sess, query, history, inWindow && followUp)
	}
	return s.answerGeneral(ctx, intent, query, history)
}

func needProduct(intent domain.Intent) *domain.Answer {
	return &domain.Answer{
		Text:   domain.NeedProductAnswer,
		Intent: intent,
		Path:   domain.AnswerPathNeedProduct,
	}
}

func (s *AssistantService) answerProduct(
	ctx context.Context, sess *Session, query string, history []domain.Message, followUp bool,
) *domain.Answer {
	res, err := s.resolver.Resolve(ctx, query, &sess.State, followUp)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return &domain.Answer{
			Text:   domain.ProductNotFoundAnswer,
			Intent: domain.ProductIntent(),
			Path:   domain.AnswerPathNotFound,
		}
	case err != nil:
		logger.Warn("resolve %q: %v", query, err)
		return &domain.Answer{
			Text:   domain.FallbackAnswer,
			Intent: domain.ProductIntent(),
			Path:   domain.AnswerPathFallback,
		}
	}
	return s.assembler.ComposeProduct(ctx, res.Product, query, history, res.Stage == StageFollowUp)
}

func (s *AssistantService) answerGeneral(
	ctx context.Context, intent domain.Intent, query string, history []domain.Message,
) *domain.Answer {
	results, err := s.index.SimilaritySearch(ctx, query, s.topK)
	if err != nil {
		logger.Warn("general retrieval %q: %v", query, err)
		return &domain.Answer{Text: domain.FallbackAnswer, Intent: intent, Path: domain.AnswerPathFallback}
	}

	chunks := make([]domain.IndexedChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Chunk)
	}

	visitURL := ""
	if page, ok := s.classifier.InfoPageFor(query); ok {
		visitURL = s.profile.ResolveURL(page.Path)
	}
	return s.assembler.ComposeGeneral(ctx, intent, query, chunks, history, visitURL)
}

// Reset clears the state and history of a conversation.
func (s *AssistantService) Reset(conversationID string) {
	s.sessions.Reset(conversationID)
}

// ListProducts returns the catalog from the last refresh ordered by
// category and name.
func (s *AssistantService) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()

	if s.products != nil && s.now().Sub(s.loadedAt) < productCacheTTL {
		return s.products, nil
	}

	items, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]domain.ProductSummary, 0, len(items))
	for _, item := range items {
		products = append(products, item.Summary())
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})

	s.products = products
	s.loadedAt = s.now()
	return products, nil
}

// Invalidate drops the cached product directory.
func (s *AssistantService) Invalidate() {
	s.dirMu.Lock()
	s.products = nil
	s.dirMu.Unlock()
}

func (s *AssistantService) productNames(ctx context.Context) []string {
	products, err := s.ListProducts(ctx)
	if err != nil {
		logger.Warn("product names: %v", err)
		return nil
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}
