// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateThinking   State = "thinking"
	StateRefreshing State = "refreshing"
	StateError      State = "error"
)

// Bar displays application status and keybinding hints. A spinner runs
// while the state is busy.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	hints   []key.Binding
	state   State
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Spinner),
		),
		hints: km.ChatHelp(),
		state: StateReady,
		width: 80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while busy. Other messages are ignored.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !b.Busy() {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(tick)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// The bar style pads one cell on each side.
	padding := b.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.spinner.View() + b.styles.Muted.Render(" Thinking...")
	case StateRefreshing:
		return b.spinner.View() + b.styles.Muted.Render(" Refreshing data...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return b.styles.Error.Render("Error")
	case StateReady:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.hints))
	for _, binding := range b.hints {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state. Entering a busy state returns the
// command that starts the spinner.
func (b *Bar) SetState(state State) tea.Cmd {
	wasBusy := b.Busy()
	b.state = state
	if b.Busy() && !wasBusy {
		return b.spinner.Tick
	}
	return nil
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// Busy reports whether a request or refresh is in flight.
func (b *Bar) Busy() bool {
	return b.state == StateThinking || b.state == StateRefreshing
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetHints replaces the keybinding hints on the right.
func (b *Bar) SetHints(bindings []key.Binding) {
	b.hints = bindings
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to default state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
