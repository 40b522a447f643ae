package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// reloadDelay coalesces bursts of editor writes into one reload.
const reloadDelay = 200 * time.Millisecond

// PromptStore loads answer templates from user-editable files on disk,
// falling back to built-in defaults.
//
// Initialisation is lazy: the directory and default files are written on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and served when a file
// is missing or unreadable.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptProduct: `You are a corporate assistant for {{.Company}}.

Only use the following context to answer. If it's missing or off-topic, say:
"I'm sorry, I can only answer questions about our official products."

Respond concisely with the product name, price, availability and URL. Never say the price is unavailable when the context lists one. Do not sign off.

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,

	driven.PromptFollowUp: `You are a corporate assistant for {{.Company}}.

The customer is asking a follow-up about {{.Product}}. Answer only the specific question using the context below, without repeating the full product details. Do not sign off.

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,

	driven.PromptGeneral: `You are a professional assistant for {{.Company}}.

Only use this official context to answer. Reply in a corporate tone. Provide a link to the information if available.

If not found in context, say:
"I'm sorry, I can only provide information from our website."

<context>
{{.Context}}
</context>

<chat_history>
{{.History}}
</chat_history>

User: {{.Question}}`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.shopdesk/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".shopdesk", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name, from cache, disk or the defaults.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("empty file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads the cache whenever a .txt file in the prompt directory
// changes. It blocks until ctx is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("watching prompts in %s", s.promptDir)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".txt" || event.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(reloadDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		case <-timer.C:
			s.Reload()
			logger.Info("prompts reloaded from %s", s.promptDir)
		}
	}
}

// initialise creates the prompt directory and any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# shopdesk Prompts

Answer templates used when generating replies.

## Files

- ` + "`product.txt`" + ` - Question about one resolved product
- ` + "`followup.txt`" + ` - Follow-up about the product under discussion
- ` + "`general.txt`" + ` - Company information (contact, shipping, about)

## Customisation

Edit any file to change the wording. A running ` + "`chat`" + ` or ` + "`mcp serve`" + `
picks up changes automatically.

## Template Fields

Templates use Go text/template syntax:
- ` + "`{{.Company}}`" + ` - Company name from the site profile
- ` + "`{{.Context}}`" + ` - Retrieved context
- ` + "`{{.History}}`" + ` - Recent conversation
- ` + "`{{.Question}}`" + ` - The customer's question
- ` + "`{{.Product}}`" + ` - Product name (product and followup only)

Product answers always end with the stored price, category and URL.
`
	return os.WriteFile(path, []byte(content), 0600)
}
