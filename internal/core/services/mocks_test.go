package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// --- Site fakes ---

// fakeSite serves an in-memory page graph keyed by normalized URL.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]*domain.Page
	errs    map[string]error
	fetches map[string]int
	onFetch func(url string)
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:   make(map[string]*domain.Page),
		errs:    make(map[string]error),
		fetches: make(map[string]int),
	}
}

func (f *fakeSite) add(url string, links ...string) *domain.Page {
	p := &domain.Page{URL: url, FinalURL: url, StatusCode: 200, Links: links}
	f.pages[domain.NormalizeURL(url)] = p
	return p
}

func (f *fakeSite) Fetch(_ context.Context, url string) (*domain.Page, error) {
	key := domain.NormalizeURL(url)
	f.mu.Lock()
	f.fetches[key]++
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook(key)
	}

	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if p, ok := f.pages[key]; ok {
		return p, nil
	}
	return &domain.Page{URL: url, StatusCode: 404}, nil
}

func (f *fakeSite) fetchCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[domain.NormalizeURL(url)]
}

func (f *fakeSite) totalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.fetches {
		n += c
	}
	return n
}

// fakeExtractor returns canned fields per normalized URL.
type fakeExtractor struct {
	products map[string]driven.ProductFields
	texts    map[string]string
	fail     map[string]bool
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		products: make(map[string]driven.ProductFields),
		texts:    make(map[string]string),
		fail:     make(map[string]bool),
	}
}

func (f *fakeExtractor) ExtractProduct(page *domain.Page, _ domain.Selectors) (driven.ProductFields, error) {
	key := domain.NormalizeURL(page.URL)
	if f.fail[key] {
		return driven.ProductFields{}, errors.New("malformed document")
	}
	return f.products[key], nil
}

func (f *fakeExtractor) ExtractGeneral(page *domain.Page) (string, error) {
	key := domain.NormalizeURL(page.URL)
	if f.fail[key] {
		return "", errors.New("malformed document")
	}
	return f.texts[key], nil
}

// --- LLM stub ---

// stubLLM returns queued responses; once the queue is empty it repeats
// the last entry.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	var err error
	if len(s.errs) > 0 {
		err = s.errs[min(i, len(s.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	return s.responses[min(i, len(s.responses)-1)], nil
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubLLM) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// --- Catalog stub ---

// stubCatalog records ReplaceAll calls and counts List calls.
type stubCatalog struct {
	mu       sync.Mutex
	items    []domain.CatalogItem
	listErr  error
	replaces int
	lists    int
}

var _ driven.CatalogStore = (*stubCatalog)(nil)

func (s *stubCatalog) ReplaceAll(_ context.Context, items []domain.CatalogItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	s.items = append([]domain.CatalogItem(nil), items...)
	return len(items), nil
}

func (s *stubCatalog) List(context.Context) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.CatalogItem(nil), s.items...), nil
}

func (s *stubCatalog) Close() error { return nil }

// --- Chunk index stub ---

// stubIndex returns fixed search results and counts calls.
type stubIndex struct {
	mu        sync.Mutex
	chunks    []domain.IndexedChunk
	results   []domain.ScoredChunk
	searchErr error
	listErr   error
	searches  int
	lists     int
}

func (s *stubIndex) AddChunks(_ context.Context, chunks []domain.IndexedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *stubIndex) SimilaritySearch(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if k > 0 && len(s.results) > k {
		return s.results[:k], nil
	}
	return s.results, nil
}

func (s *stubIndex) ListAll(_ context.Context) ([]domain.IndexedChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.IndexedChunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *stubIndex) Close() error { return nil }

// --- Prompt store stub ---

type stubPrompts map[string]string

func (s stubPrompts) Load(name string) (string, error) {
	if p, ok := s[name]; ok {
		return p, nil
	}
	return "", errors.New("no prompt")
}

func (s stubPrompts) Reload() {}

// --- Scheduler store mock ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]*domain.ScheduledTask
	results map[string][]domain.TaskResult
	saveErr error
	listErr error
	getErr  error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	out := make([]domain.TaskResult, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		out = append(out, results[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return nil
}

// Ensure mocks implement interfaces.
var (
	_ driven.SiteClient     = (*fakeSite)(nil)
	_ driven.PageExtractor  = (*fakeExtractor)(nil)
	_ driven.LLMService     = (*stubLLM)(nil)
	_ driven.ChunkIndex     = (*stubIndex)(nil)
	_ driven.PromptStore    = stubPrompts(nil)
	_ driven.SchedulerStore = (*mockSchedulerStore)(nil)
)

// testProfile is a small shop used across service tests.
func testProfile() domain.SiteProfile {
	p := domain.DefaultSiteProfile()
	p.Company = "Test Oil Co"
	p.BaseURL = "https://shop.test"
	p.Categories = []domain.Category{
		{Slug: "engine-oils", Name: "Engine Oils"},
		{Slug: "greases", Name: "Greases"},
	}
	return p
}

// productChunk builds an indexed product chunk as the refresh path would.
func productChunk(name, category, price, url string) domain.IndexedChunk {
	item := domain.NewCatalogItem(url, category, name, name+" for demanding conditions.", price)
	rec := item.Record()
	return domain.IndexedChunk{
		ID:          "id-" + item.ContentHash[:8],
		Text:        rec.Text,
		Metadata:    rec.Metadata,
		ContentHash: item.ContentHash,
	}
}

// generalChunk builds an indexed informational chunk.
func generalChunk(label, url, body string) domain.IndexedChunk {
	page := domain.InformationalPage{Label: label, URL: url, BodyText: body, PageType: domain.PageTypeGeneral}
	rec := page.Record()
	return domain.IndexedChunk{
		ID:          "id-" + label,
		Text:        rec.Text,
		Metadata:    rec.Metadata,
		ContentHash: rec.Hash(),
	}
}
