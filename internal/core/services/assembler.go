package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
	"github.com/custodia-labs/shopdesk/internal/textmatch"
)

// Ensure AnswerAssembler implements PromptStoreAware.
var _ driven.PromptStoreAware = (*AnswerAssembler)(nil)

// fallbackPrompts are used when no PromptStore is configured.
var fallbackPrompts = map[string]string{
	driven.PromptProduct: `You are a corporate assistant for {{.Company}}.
Only use the context below. Respond concisely with product name, price, availability and URL.

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,

	driven.PromptFollowUp: `You are a corporate assistant for {{.Company}}.
The customer is asking a follow-up about {{.Product}}. Answer only the specific question, without repeating the full product details.

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,

	driven.PromptGeneral: `You are a professional assistant for {{.Company}}.
Only use this official context to answer, in a corporate tone.

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,
}

// promptData holds the template variables.
type promptData struct {
	Company  string
	Context  string
	History  string
	Question string
	Product  string
}

// AssemblerConfig controls context size and generation policy.
type AssemblerConfig struct {
	ContextBudget  int
	RelevanceFloor float64
	Retries        int
	RetryBackoff   time.Duration
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float64
}

// AssemblerConfigFrom derives the assembler configuration from settings.
func AssemblerConfigFrom(settings domain.AppSettings) AssemblerConfig {
	a := settings.Answer
	return AssemblerConfig{
		ContextBudget:  a.ContextBudget,
		RelevanceFloor: a.RelevanceFloor,
		Retries:        a.Retries,
		RetryBackoff:   a.RetryBackoff,
		Timeout:        a.Timeout,
		MaxTokens:      a.MaxTokens,
		Temperature:    a.Temperature,
	}
}

// AnswerAssembler builds prompts, calls the LLM with retry and
// post-processes the result.
type AnswerAssembler struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	company string
	cfg     AssemblerConfig
}

// NewAnswerAssembler creates an assembler. llm may be nil, in which case
// every generated answer is the fallback text.
func NewAnswerAssembler(llm driven.LLMService, company string, cfg AssemblerConfig) *AnswerAssembler {
	if cfg.Retries <= 0 {
		cfg.Retries = 1
	}
	return &AnswerAssembler{llm: llm, company: company, cfg: cfg}
}

// SetPromptStore sets the store templates are loaded from.
func (a *AnswerAssembler) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// ComposeProduct answers a question about one resolved product.
// followUp selects the terser follow-up template.
func (a *AnswerAssembler) ComposeProduct(
	ctx context.Context, product domain.IndexedChunk, query string, history []domain.Message, followUp bool,
) *domain.Answer {
	summary := domain.SummaryOf(product)
	name, path := driven.PromptProduct, domain.AnswerPathProduct
	if followUp {
		name, path = driven.PromptFollowUp, domain.AnswerPathFollowUp
	}

	raw, err := a.generate(ctx, name, promptData{
		Company:  a.company,
		Context:  ProductContext(product),
		History:  domain.FormatHistory(history),
		Question: query,
		Product:  summary.Name,
	})
	if err != nil {
		logger.Warn("answer: %v", err)
		return &domain.Answer{Text: domain.FallbackAnswer, Intent: domain.ProductIntent(), Path: domain.AnswerPathFallback}
	}

	return &domain.Answer{
		Text:    CleanProductAnswer(raw, summary),
		Intent:  domain.ProductIntent(),
		Path:    path,
		Product: &summary,
	}
}

// ComposeGeneral answers from informational chunks. Queries whose best
// lexical relevance is below the floor get the fixed no-information
// answer without a generation call. visitURL, when set, is appended.
func (a *AnswerAssembler) ComposeGeneral(
	ctx context.Context, intent domain.Intent, query string, chunks []domain.IndexedChunk,
	history []domain.Message, visitURL string,
) *domain.Answer {
	var general []domain.IndexedChunk
	for _, c := range chunks {
		if !c.IsProduct() {
			general = append(general, c)
		}
	}

	best := 0.0
	for _, c := range general {
		best = max(best, textmatch.TokenSetRatio(query, c.Text))
	}
	if len(general) == 0 || best < a.cfg.RelevanceFloor {
		logger.Debug("Relevance %.1f below floor %.1f", best, a.cfg.RelevanceFloor)
		return &domain.Answer{Text: domain.NoInformationAnswer, Intent: intent, Path: domain.AnswerPathNoInfo}
	}

	raw, err := a.generate(ctx, driven.PromptGeneral, promptData{
		Company:  a.company,
		Context:  GeneralContext(general, a.cfg.ContextBudget),
		History:  domain.FormatHistory(history),
		Question: query,
	})
	if err != nil {
		logger.Warn("answer: %v", err)
		return &domain.Answer{Text: domain.FallbackAnswer, Intent: intent, Path: domain.AnswerPathFallback}
	}

	return &domain.Answer{
		Text:   CleanGeneralAnswer(raw, visitURL),
		Intent: intent,
		Path:   domain.AnswerPathGeneral,
	}
}

// generate renders the template and calls the LLM with fixed-backoff
// retry. The whole sequence is bounded by the configured timeout.
func (a *AnswerAssembler) generate(ctx context.Context, name string, data promptData) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	prompt, err := a.render(name, data)
	if err != nil {
		return "", err
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	opts := driven.GenerateOptions{MaxTokens: a.cfg.MaxTokens, Temperature: a.cfg.Temperature}
	var errs []error
	for attempt := 1; attempt <= a.cfg.Retries; attempt++ {
		out, err := a.llm.Generate(ctx, prompt, opts)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, nil
		}
		if err == nil {
			err = errors.New("empty response")
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
		logger.Debug("Generation attempt %d/%d failed: %v", attempt, a.cfg.Retries, err)

		if attempt == a.cfg.Retries {
			break
		}
		if waitErr := sleepCtx(ctx, a.cfg.RetryBackoff); waitErr != nil {
			errs = append(errs, waitErr)
			break
		}
	}
	return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, errors.Join(errs...))
}

func (a *AnswerAssembler) render(name string, data promptData) (string, error) {
	text, ok := fallbackPrompts[name]
	if a.prompts != nil {
		loaded, err := a.prompts.Load(name)
		if err != nil {
			logger.Warn("answer: load prompt %s: %v", name, err)
		} else {
			text, ok = loaded, true
		}
	}
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ProductContext renders the fixed-layout product block.
func ProductContext(c domain.IndexedChunk) string {
	m := c.Metadata
	return fmt.Sprintf("Name: %s\nCategory: %s\nAvailability: %s\nURL: %s\nDescription: %s\nPrice: %s",
		m.Name, m.Category, domain.DefaultAvailability, m.URL, productDescription(c), m.Price)
}

// productDescription recovers the description from a rendered product
// chunk, which starts with the name and ends with the price lines.
func productDescription(c domain.IndexedChunk) string {
	text := strings.TrimPrefix(c.Text, c.Metadata.Name+"\n\n")
	if i := strings.Index(text, "\n\nPrice: "); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// GeneralContext joins chunk texts and truncates to budget runes.
func GeneralContext(chunks []domain.IndexedChunk, budget int) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	joined := strings.Join(texts, "\n")
	if budget <= 0 {
		return joined
	}
	runes := []rune(joined)
	if len(runes) <= budget {
		return joined
	}
	return string(runes[:budget])
}
