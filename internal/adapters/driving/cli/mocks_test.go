package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// mockAssistantService implements driving.AssistantService for testing.
type mockAssistantService struct {
	mu       sync.Mutex
	answers  map[string]string
	products []domain.ProductSummary
	err      error

	conversations []string
	questions     []string
	resets        []string
}

func (m *mockAssistantService) Ask(_ context.Context, conversationID, query string) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = append(m.conversations, conversationID)
	m.questions = append(m.questions, query)
	if m.err != nil {
		return nil, m.err
	}
	text, ok := m.answers[query]
	if !ok {
		text = domain.NoInformationAnswer
	}
	return &domain.Answer{Text: text}, nil
}

func (m *mockAssistantService) Reset(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, conversationID)
}

func (m *mockAssistantService) ListProducts(_ context.Context) ([]domain.ProductSummary, error) {
	return m.products, m.err
}

// mockRefreshService implements driving.RefreshService for testing.
type mockRefreshService struct {
	report *domain.RefreshReport
	runs   []domain.TaskResult
	err    error

	limit int
}

func (m *mockRefreshService) Refresh(_ context.Context) (*domain.RefreshReport, error) {
	return m.report, m.err
}

func (m *mockRefreshService) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.limit = limit
	return m.runs, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error

	setKey, setValue string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.setErr
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{stopCh: make(chan struct{})}
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopCh:
		return nil
	}
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.stopCh)
	}
	return nil
}

func (m *mockScheduler) isStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

var _ driving.Scheduler = (*mockScheduler)(nil)

// withServices installs svcs for the duration of the test.
func withServices(t *testing.T, svcs *Services) {
	t.Helper()
	saved := &Services{
		Assistant:    assistantService,
		Refresh:      refreshService,
		Settings:     settingsService,
		NewScheduler: schedulerFactory,
		Prompts:      promptWatcher,
		SiteProfile:  siteProfile,
	}
	SetServices(&Services{})
	SetServices(svcs)
	t.Cleanup(func() { SetServices(saved) })
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	verbose = false
	configDir = ""
	refreshJSON = false
	productsJSON = false
	askConversation = "cli"
	historyLimit = 10
}

func sampleProducts() []domain.ProductSummary {
	return []domain.ProductSummary{
		{Name: "Oak Desk", Category: "Furniture", Price: "$250", URL: "https://shop.test/product/oak-desk"},
		{Name: "Pine Shelf", Category: "Furniture", Price: "$90", URL: "https://shop.test/product/pine-shelf"},
		{Name: "Desk Lamp", Category: "Lighting", Price: "$40", URL: "https://shop.test/product/desk-lamp"},
	}
}

func sampleRuns() []domain.TaskResult {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []domain.TaskResult{
		{
			TaskID:         domain.TaskIDCatalogRefresh,
			StartedAt:      start,
			EndedAt:        start.Add(90 * time.Second),
			Success:        true,
			ItemsProcessed: 12,
			ChunksAdded:    30,
		},
		{
			TaskID:    domain.TaskIDCatalogRefresh,
			StartedAt: start.Add(-24 * time.Hour),
			EndedAt:   start.Add(-24*time.Hour + time.Second),
			Success:   false,
			Error:     "crawl: fetch failed",
		},
	}
}
