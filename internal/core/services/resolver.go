package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
	"github.com/custodia-labs/shopdesk/internal/textmatch"
)

// ResolveStage names the step that produced a resolution.
type ResolveStage string

// Resolution stages.
const (
	StageFollowUp ResolveStage = "followup"
	StageSemantic ResolveStage = "semantic"
	StageLexical  ResolveStage = "lexical"
	StageSoft     ResolveStage = "soft"
)

// Resolution is an accepted product match.
type Resolution struct {
	Product domain.IndexedChunk
	Score   float64
	Stage   ResolveStage
}

// ResolverConfig holds the acceptance thresholds on a 0-100 scale.
type ResolverConfig struct {
	TopK              int
	SemanticThreshold float64
	LexicalThreshold  float64
	SoftThreshold     float64

	// SemanticTimeout bounds the similarity search.
	SemanticTimeout time.Duration
}

// ResolverConfigFrom derives the resolver configuration from settings.
func ResolverConfigFrom(settings domain.AppSettings) ResolverConfig {
	return ResolverConfig{
		TopK:              settings.Index.TopK,
		SemanticThreshold: settings.Answer.SemanticThreshold,
		LexicalThreshold:  settings.Answer.LexicalThreshold,
		SoftThreshold:     settings.Answer.SoftThreshold,
		SemanticTimeout:   settings.Answer.Timeout,
	}
}

// ProductResolver finds the product a query is about.
type ProductResolver struct {
	index driven.ChunkIndex
	cfg   ResolverConfig
}

// NewProductResolver creates a resolver over index.
func NewProductResolver(index driven.ChunkIndex, cfg ResolverConfig) *ProductResolver {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &ProductResolver{index: index, cfg: cfg}
}

// Resolve returns the product for query. When followUp is set and the
// state remembers a product, that product is returned without retrieval.
// An accepted match is remembered in state.
func (r *ProductResolver) Resolve(
	ctx context.Context, query string, state *domain.ConversationState, followUp bool,
) (*Resolution, error) {
	if followUp && state.HasProduct() {
		logger.Debug("Follow-up reuses %q", state.LastResolvedProduct.Metadata.Name)
		return &Resolution{Product: *state.LastResolvedProduct, Score: 100, Stage: StageFollowUp}, nil
	}

	semantic := r.semanticCandidate(ctx, query)
	if semantic != nil && semantic.Score >= r.cfg.SemanticThreshold {
		semantic.Stage = StageSemantic
		return r.accept(state, r.current(ctx, semantic)), nil
	}

	lexical, err := r.lexicalCandidate(ctx, query)
	if err != nil {
		return nil, err
	}
	if lexical != nil {
		if lexical.Score >= r.cfg.LexicalThreshold {
			lexical.Stage = StageLexical
			return r.accept(state, lexical), nil
		}
		if semantic != nil && sameProduct(semantic.Product, lexical.Product) &&
			lexical.Score >= r.cfg.SoftThreshold {
			lexical.Stage = StageSoft
			return r.accept(state, lexical), nil
		}
	}

	logger.Debug("No product above threshold for %q", query)
	return nil, domain.ErrProductNotFound
}

func (r *ProductResolver) accept(state *domain.ConversationState, res *Resolution) *Resolution {
	logger.Debug("Resolved %q via %s (%.1f)", res.Product.Metadata.Name, res.Stage, res.Score)
	state.Remember(res.Product)
	return res
}

// semanticCandidate returns the best-named product among the top-k
// similar chunks. A failed search yields no candidate.
func (r *ProductResolver) semanticCandidate(ctx context.Context, query string) *Resolution {
	searchCtx := ctx
	if r.cfg.SemanticTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, r.cfg.SemanticTimeout)
		defer cancel()
	}

	results, err := r.index.SimilaritySearch(searchCtx, query, r.cfg.TopK)
	if err != nil {
		logger.Warn("resolver: similarity search failed: %v", err)
		return nil
	}

	var best *Resolution
	for _, sc := range results {
		if !sc.Chunk.IsProduct() {
			continue
		}
		score := textmatch.TokenSetRatio(query, sc.Chunk.Metadata.Name)
		if best == nil || score > best.Score {
			best = &Resolution{Product: sc.Chunk, Score: score}
		}
	}
	return best
}

// current swaps the accepted chunk for the newest indexed version of the
// same product. Similarity search may rank an older version first.
func (r *ProductResolver) current(ctx context.Context, res *Resolution) *Resolution {
	chunks, err := r.index.ListAll(ctx)
	if err != nil {
		logger.Warn("resolver: cannot load current version of %q: %v", res.Product.Metadata.Name, err)
		return res
	}
	for _, c := range latestProducts(chunks) {
		if sameProduct(c, res.Product) {
			res.Product = c
			break
		}
	}
	return res
}

// lexicalCandidate scans every indexed product name.
func (r *ProductResolver) lexicalCandidate(ctx context.Context, query string) (*Resolution, error) {
	chunks, err := r.index.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var best *Resolution
	for _, c := range latestProducts(chunks) {
		score := textmatch.TokenSetRatio(query, c.Metadata.Name)
		if best == nil || score > best.Score {
			best = &Resolution{Product: c, Score: score}
		}
	}
	return best, nil
}

func sameProduct(a, b domain.IndexedChunk) bool {
	if a.Metadata.URL != "" && b.Metadata.URL != "" {
		return a.Metadata.URL == b.Metadata.URL
	}
	return a.Metadata.Name == b.Metadata.Name
}

// latestProducts returns one chunk per product URL: the first chunk of the
// most recently indexed record version. Older versions stay in the index
// because nothing is deleted by URL.
func latestProducts(chunks []domain.IndexedChunk) []domain.IndexedChunk {
	pos := make(map[string]int)
	var out []domain.IndexedChunk
	for _, c := range chunks {
		if !c.IsProduct() {
			continue
		}
		key := c.Metadata.URL
		if key == "" {
			key = c.Metadata.Name
		}
		i, ok := pos[key]
		switch {
		case !ok:
			pos[key] = len(out)
			out = append(out, c)
		case c.Metadata.Position == 0:
			out[i] = c
		}
	}
	return out
}
