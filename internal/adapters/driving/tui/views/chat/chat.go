// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// Speaker identifies who wrote a transcript entry.
type Speaker int

const (
	SpeakerCustomer Speaker = iota
	SpeakerAssistant
)

// Entry is one message in the transcript.
type Entry struct {
	Speaker Speaker
	Text    string
	At      time.Time
}

const (
	greeting       = "Hello! Ask me anything about our products."
	refreshStarted = "Refreshing knowledge base. Please wait..."
	refreshDone    = "Knowledge base refreshed successfully!"
	resetCommand   = "/reset"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// View is the conversation view: a scrolling transcript, the message
// input and the status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.MessageInput
	viewport  viewport.Model
	statusbar *status.Bar

	assistant driving.AssistantService
	refresher driving.RefreshService
	ctx       context.Context
	now       func() time.Time

	title          string
	conversationID string
	transcript     []Entry
	waiting        bool
	refreshing     bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view. refresher may be nil, in which case
// refreshing is reported as unavailable.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	assistant driving.AssistantService,
	refresher driving.RefreshService,
	title string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:         s,
		keymap:         km,
		input:          input.NewMessageInput(s),
		viewport:       viewport.New(80, 16),
		statusbar:      status.NewBar(s, km),
		assistant:      assistant,
		refresher:      refresher,
		ctx:            context.Background(),
		now:            time.Now,
		title:          title,
		conversationID: newConversationID(),
		width:          80,
		height:         24,
	}
	v.statusbar.SetHints(km.ChatHelp())
	v.startTranscript()
	return v
}

func newConversationID() string {
	return "tui-" + uuid.NewString()
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithClock replaces the clock used to stamp messages.
func (v *View) WithClock(now func() time.Time) *View {
	v.now = now
	v.startTranscript()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.RefreshCompleted:
		v.handleRefreshCompleted(msg)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.startRefresh()

	case keymap.Matches(key, v.keymap.Reset):
		v.Reset()
		return v, nil

	case keymap.Matches(key, v.keymap.Products):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewProducts}
		}

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		if v.waiting {
			return v, nil
		}
		text := v.input.Submit()
		if text == "" {
			return v, nil
		}
		if strings.EqualFold(text, resetCommand) {
			v.Reset()
			return v, nil
		}
		return v, v.Ask(text)
	}

	// Typing is locked while a reply is pending.
	if v.waiting {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Ask records question in the transcript and returns the command that
// fetches the answer. It returns nil while another reply is pending.
func (v *View) Ask(question string) tea.Cmd {
	if v.waiting {
		return nil
	}
	v.waiting = true
	v.input.Blur()
	v.append(SpeakerCustomer, question)

	ctx, assistant, conversationID := v.ctx, v.assistant, v.conversationID
	ask := func() tea.Msg {
		answer, err := assistant.Ask(ctx, conversationID, question)
		return messages.AnswerReceived{
			ConversationID: conversationID,
			Question:       question,
			Answer:         answer,
			Err:            err,
		}
	}
	var spin tea.Cmd
	if !v.refreshing {
		spin = v.statusbar.SetState(status.StateThinking)
	}
	return tea.Batch(spin, ask)
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	// Replies to a conversation that was reset are dropped.
	if msg.ConversationID != v.conversationID {
		return
	}
	v.waiting = false
	v.input.Focus()

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.append(SpeakerAssistant, "Sorry, something went wrong: "+msg.Err.Error())
		return
	}
	if !v.refreshing {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
	}
	if msg.Answer != nil {
		v.append(SpeakerAssistant, msg.Answer.Text)
	}
}

func (v *View) startRefresh() tea.Cmd {
	if v.refresher == nil {
		v.statusbar.SetMessage("Refresh is not available")
		return nil
	}
	if v.refreshing {
		return nil
	}
	v.refreshing = true
	v.append(SpeakerAssistant, refreshStarted)

	ctx, refresher := v.ctx, v.refresher
	refresh := func() tea.Msg {
		report, err := refresher.Refresh(ctx)
		return messages.RefreshCompleted{Report: report, Err: err}
	}
	return tea.Batch(v.statusbar.SetState(status.StateRefreshing), refresh)
}

func (v *View) handleRefreshCompleted(msg messages.RefreshCompleted) {
	v.refreshing = false
	next := status.StateReady
	if v.waiting {
		next = status.StateThinking
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.append(SpeakerAssistant, "Refresh failed: "+msg.Err.Error())
		return
	}
	v.statusbar.SetState(next)
	if msg.Report != nil {
		v.statusbar.SetMessage(fmt.Sprintf("Refreshed %d products, %d chunks added",
			msg.Report.RecordsScraped, msg.Report.ChunksAdded))
	}
	v.append(SpeakerAssistant, refreshDone)
}

// Reset starts a new conversation and clears the transcript.
func (v *View) Reset() {
	v.assistant.Reset(v.conversationID)
	v.conversationID = newConversationID()
	v.waiting = false
	v.input.SetValue("")
	v.input.Focus()
	if !v.refreshing {
		v.statusbar.Clear()
	}
	v.statusbar.SetMessage("Conversation reset.")
	v.startTranscript()
}

func (v *View) startTranscript() {
	v.transcript = nil
	v.append(SpeakerAssistant, greeting)
}

func (v *View) append(speaker Speaker, text string) {
	v.transcript = append(v.transcript, Entry{Speaker: speaker, Text: text, At: v.now()})
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	blocks := make([]string, 0, len(v.transcript))
	for _, e := range v.transcript {
		blocks = append(blocks, v.renderEntry(e))
	}
	return strings.Join(blocks, "\n")
}

func (v *View) renderEntry(e Entry) string {
	width := v.viewport.Width
	bubbleWidth := max(width*3/4, 20)

	speaker := v.title
	bubble := v.styles.BotBubble
	align := lipgloss.Left
	if e.Speaker == SpeakerCustomer {
		speaker = "You"
		bubble = v.styles.UserBubble
		align = lipgloss.Right
	}

	body := bubble.Width(min(lipgloss.Width(e.Text)+4, bubbleWidth)).Render(v.highlightLinks(e.Text))
	label := v.styles.Speaker.Render(speaker + "  " + e.At.Format(time.Kitchen))
	block := lipgloss.JoinVertical(align, label, body)
	return lipgloss.PlaceHorizontal(width, align, block)
}

// highlightLinks styles URLs, leaving trailing punctuation outside the link.
func (v *View) highlightLinks(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(raw string) string {
		link := strings.TrimRight(raw, ".,)]")
		return v.styles.Link.Render(link) + raw[len(link):]
	})
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render(v.title),
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	// Title, input and status bar take the rest.
	v.viewport.Height = max(height-1-v.input.Height()-1, 3)
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Transcript returns the messages shown so far.
func (v *View) Transcript() []Entry {
	return v.transcript
}

// ConversationID returns the identifier of the current conversation.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Waiting reports whether a reply is pending.
func (v *View) Waiting() bool {
	return v.waiting
}

// Refreshing reports whether a catalog refresh is running.
func (v *View) Refreshing() bool {
	return v.refreshing
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Input returns the typed but unsent text.
func (v *View) Input() string {
	return v.input.Value()
}
