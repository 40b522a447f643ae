// Package products provides the indexed product listing view for the TUI.
package products

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// View lists the indexed products. Choosing one asks the chat about it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.ProductList
	statusbar *status.Bar

	assistant driving.AssistantService
	ctx       context.Context

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new products view.
func NewView(s *styles.Styles, km *keymap.KeyMap, assistant driving.AssistantService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		list:      list.NewProductList(s),
		statusbar: status.NewBar(s, km),
		assistant: assistant,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.statusbar.SetHints(km.ProductsHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the product listing.
func (v *View) Init() tea.Cmd {
	v.loading = true
	ctx, assistant := v.ctx, v.assistant
	return func() tea.Msg {
		products, err := assistant.ListProducts(ctx)
		return messages.ProductsLoaded{Products: products, Err: err}
	}
}

// Update handles messages for the products view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.ProductsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.statusbar.Clear()
		v.list.SetProducts(msg.Products)

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.Select):
		p := v.list.SelectedProduct()
		if p == nil {
			return v, nil
		}
		chosen := *p
		return v, func() tea.Msg {
			return messages.ProductChosen{Product: chosen}
		}
	}
	return v, nil
}

// View renders the products view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	body := v.list.View()
	switch {
	case v.loading:
		body = v.styles.Muted.Render("Loading products...")
	case v.err != nil:
		body = v.styles.Error.Render("Error: " + v.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("Products"),
		"",
		body,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, height-4)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Loading reports whether the listing is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error, if any.
func (v *View) Err() error {
	return v.err
}

// Count returns the number of listed products.
func (v *View) Count() int {
	return v.list.Count()
}
