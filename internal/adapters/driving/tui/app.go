package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/views/products"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView     *chat.View
	productsView *products.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		chatView:     chat.NewView(s, km, ports.Assistant, ports.Refresh, ports.title()),
		productsView: products.NewView(s, km, ports.Assistant),
		currentView:  messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.productsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(a.ports.title()),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewProducts {
			a.productsView, cmd = a.productsView.Update(msg)
			return a, cmd
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewProducts {
			return a, a.productsView.Init()
		}
		return a, nil

	case messages.ProductChosen:
		a.currentView = messages.ViewChat
		return a, a.chatView.Ask("Tell me about " + msg.Product.Name)

	case messages.ProductsLoaded:
		a.productsView, cmd = a.productsView.Update(msg)
		return a, cmd

	// Replies, refreshes and the spinner belong to the chat even while the
	// product list is showing.
	case messages.AnswerReceived, messages.RefreshCompleted, spinner.TickMsg:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewProducts {
		a.productsView, cmd = a.productsView.Update(msg)
		return a, cmd
	}
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewProducts {
		return a.productsView.View()
	}
	return a.chatView.View()
}

// Run starts the TUI and blocks until the user quits or the context
// is cancelled.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the conversation view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Products returns the product listing view.
func (a *App) Products() *products.View {
	return a.productsView
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.productsView.SetDimensions(width, height)
}
