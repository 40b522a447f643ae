// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
)

// maxMessageLength bounds a single customer message.
const maxMessageLength = 1000

// MessageInput wraps a bubbles textinput for composing chat messages.
type MessageInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewMessageInput creates a new message input component.
func NewMessageInput(s *styles.Styles) *MessageInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message here..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = maxMessageLength

	m := &MessageInput{
		textinput: ti,
		styles:    s,
	}
	m.SetWidth(50)
	return m
}

// Init initialises the message input.
func (m *MessageInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (m *MessageInput) Update(msg tea.Msg) (*MessageInput, tea.Cmd) {
	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

// View renders the message input.
func (m *MessageInput) View() string {
	return m.styles.InputField.Width(m.width - 2).Render(m.textinput.View())
}

// Submit returns the trimmed message and clears the input.
// An all-whitespace message yields "" and leaves the input untouched.
func (m *MessageInput) Submit() string {
	text := strings.TrimSpace(m.textinput.Value())
	if text == "" {
		return ""
	}
	m.textinput.Reset()
	return text
}

// Value returns the current input value.
func (m *MessageInput) Value() string {
	return m.textinput.Value()
}

// SetValue sets the input value.
func (m *MessageInput) SetValue(value string) {
	m.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (m *MessageInput) Focus() tea.Cmd {
	return m.textinput.Focus()
}

// Blur removes focus from the input.
func (m *MessageInput) Blur() {
	m.textinput.Blur()
}

// Focused returns whether the input is focused.
func (m *MessageInput) Focused() bool {
	return m.textinput.Focused()
}

// SetWidth sets the width of the input.
func (m *MessageInput) SetWidth(width int) {
	m.width = max(width, 24)
	// Account for the border, padding and prompt.
	m.textinput.Width = max(m.width-8, 16)
}

// Width returns the current width.
func (m *MessageInput) Width() int {
	return m.width
}

// Height returns the rendered height of the input.
func (m *MessageInput) Height() int {
	return lipgloss.Height(m.View())
}
