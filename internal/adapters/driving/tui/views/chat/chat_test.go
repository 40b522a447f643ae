package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

type mockAssistant struct {
	asked  []string
	convs  []string
	resets []string
	err    error
}

func (m *mockAssistant) Ask(_ context.Context, conversationID, query string) (*domain.Answer, error) {
	m.asked = append(m.asked, query)
	m.convs = append(m.convs, conversationID)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{Text: "Answer to: " + query, Path: domain.AnswerPathGeneral}, nil
}

func (m *mockAssistant) Reset(conversationID string) {
	m.resets = append(m.resets, conversationID)
}

func (m *mockAssistant) ListProducts(context.Context) ([]domain.ProductSummary, error) {
	return nil, nil
}

type mockRefresher struct {
	calls int
	err   error
}

func (m *mockRefresher) Refresh(context.Context) (*domain.RefreshReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RefreshReport{RecordsScraped: 12, ChunksAdded: 30}, nil
}

func (m *mockRefresher) History(context.Context, int) ([]domain.TaskResult, error) {
	return nil, nil
}

var fixedTime = time.Date(2026, 3, 1, 15, 4, 0, 0, time.UTC)

func newTestView(refresher *mockRefresher) (*View, *mockAssistant) {
	assistant := &mockAssistant{}
	var v *View
	if refresher == nil {
		v = NewView(nil, nil, assistant, nil, "Acme Assistant")
	} else {
		v = NewView(nil, nil, assistant, refresher, "Acme Assistant")
	}
	v.WithClock(func() time.Time { return fixedTime })
	v.SetDimensions(100, 30)
	return v, assistant
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			return typed
		}
	}
	var zero T
	require.Failf(t, "message not found", "%T not in %v", zero, msgs)
	return zero
}

func typeAndSend(v *View, text string) tea.Cmd {
	v.input.SetValue(text)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestNewView_StartsWithGreeting(t *testing.T) {
	v, _ := newTestView(nil)

	require.Len(t, v.Transcript(), 1)
	assert.Equal(t, SpeakerAssistant, v.Transcript()[0].Speaker)
	assert.Equal(t, greeting, v.Transcript()[0].Text)
	assert.True(t, strings.HasPrefix(v.ConversationID(), "tui-"))
	assert.NotNil(t, v.Init())
}

func TestView_NotReadyBeforeSizing(t *testing.T) {
	v := NewView(nil, nil, &mockAssistant{}, nil, "Acme")

	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())

	v.Update(tea.WindowSizeMsg{Width: 90, Height: 20})
	assert.True(t, v.Ready())
}

func TestView_SendAsksAssistant(t *testing.T) {
	v, assistant := newTestView(nil)

	cmd := typeAndSend(v, "  how much is the oak chair?  ")

	assert.True(t, v.Waiting())
	assert.Equal(t, status.StateThinking, v.Status())
	assert.Equal(t, "", v.Input())
	require.Len(t, v.Transcript(), 2)
	assert.Equal(t, SpeakerCustomer, v.Transcript()[1].Speaker)
	assert.Equal(t, "how much is the oak chair?", v.Transcript()[1].Text)

	answer := findMsg[messages.AnswerReceived](t, collect(cmd))
	assert.Equal(t, []string{"how much is the oak chair?"}, assistant.asked)
	assert.Equal(t, []string{v.ConversationID()}, assistant.convs)

	v.Update(answer)

	assert.False(t, v.Waiting())
	assert.Equal(t, status.StateReady, v.Status())
	require.Len(t, v.Transcript(), 3)
	assert.Equal(t, "Answer to: how much is the oak chair?", v.Transcript()[2].Text)
}

func TestView_BlankMessageIgnored(t *testing.T) {
	v, assistant := newTestView(nil)

	cmd := typeAndSend(v, "   ")

	assert.Nil(t, cmd)
	assert.False(t, v.Waiting())
	assert.Len(t, v.Transcript(), 1)
	assert.Empty(t, assistant.asked)
}

func TestView_InputLockedWhileWaiting(t *testing.T) {
	v, _ := newTestView(nil)
	typeAndSend(v, "first")

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, "", v.Input())

	assert.Nil(t, v.Ask("second"))
	assert.Len(t, v.Transcript(), 2)
}

func TestView_AnswerError(t *testing.T) {
	v, assistant := newTestView(nil)
	assistant.err = errors.New("llm down")

	answer := findMsg[messages.AnswerReceived](t, collect(typeAndSend(v, "hello")))
	v.Update(answer)

	assert.False(t, v.Waiting())
	assert.Equal(t, status.StateError, v.Status())
	assert.Equal(t, "llm down", v.StatusMessage())
	last := v.Transcript()[len(v.Transcript())-1]
	assert.Contains(t, last.Text, "Sorry, something went wrong: llm down")
}

func TestView_ResetCommand(t *testing.T) {
	v, assistant := newTestView(nil)
	first := v.ConversationID()
	v.Update(findMsg[messages.AnswerReceived](t, collect(typeAndSend(v, "hello"))))

	typeAndSend(v, "/RESET")

	assert.Equal(t, []string{first}, assistant.resets)
	assert.NotEqual(t, first, v.ConversationID())
	require.Len(t, v.Transcript(), 1)
	assert.Equal(t, greeting, v.Transcript()[0].Text)
	assert.Equal(t, "Conversation reset.", v.StatusMessage())
}

func TestView_ResetKeyDropsPendingAnswer(t *testing.T) {
	v, assistant := newTestView(nil)
	cmd := typeAndSend(v, "hello")

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Len(t, assistant.resets, 1)
	assert.False(t, v.Waiting())

	v.Update(findMsg[messages.AnswerReceived](t, collect(cmd)))

	assert.Len(t, v.Transcript(), 1)
}

func TestView_Refresh(t *testing.T) {
	refresher := &mockRefresher{}
	v, _ := newTestView(refresher)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.True(t, v.Refreshing())
	assert.Equal(t, status.StateRefreshing, v.Status())
	assert.Equal(t, refreshStarted, v.Transcript()[len(v.Transcript())-1].Text)

	// A second press while running is ignored.
	_, again := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, again)

	done := findMsg[messages.RefreshCompleted](t, collect(cmd))
	assert.Equal(t, 1, refresher.calls)
	v.Update(done)

	assert.False(t, v.Refreshing())
	assert.Equal(t, status.StateReady, v.Status())
	assert.Equal(t, "Refreshed 12 products, 30 chunks added", v.StatusMessage())
	assert.Equal(t, refreshDone, v.Transcript()[len(v.Transcript())-1].Text)
}

func TestView_RefreshFailure(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("site unreachable")}
	v, _ := newTestView(refresher)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	v.Update(findMsg[messages.RefreshCompleted](t, collect(cmd)))

	assert.Equal(t, status.StateError, v.Status())
	assert.Equal(t, "Refresh failed: site unreachable", v.Transcript()[len(v.Transcript())-1].Text)
}

func TestView_RefreshUnavailable(t *testing.T) {
	v, _ := newTestView(nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Nil(t, cmd)
	assert.Equal(t, "Refresh is not available", v.StatusMessage())
}

func TestView_AnswerDuringRefreshKeepsSpinner(t *testing.T) {
	v, _ := newTestView(&mockRefresher{})
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	answer := findMsg[messages.AnswerReceived](t, collect(typeAndSend(v, "hi")))
	v.Update(answer)

	assert.Equal(t, status.StateRefreshing, v.Status())
}

func TestView_TabOpensProducts(t *testing.T) {
	v, _ := newTestView(nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewProducts}, cmd())
}

func TestView_Render(t *testing.T) {
	v, _ := newTestView(nil)
	v.Update(findMsg[messages.AnswerReceived](t, collect(typeAndSend(v, "where is it?"))))

	view := v.View()

	assert.Contains(t, view, "Acme Assistant")
	assert.Contains(t, view, "You")
	assert.Contains(t, view, "where is it?")
	assert.Contains(t, view, "3:04PM")
	assert.Contains(t, view, "Type your message")
}

func TestHighlightLinks_KeepsTrailingPunctuation(t *testing.T) {
	v, _ := newTestView(nil)

	out := v.highlightLinks("See https://shop.test/p/chair).")

	assert.Contains(t, out, "https://shop.test/p/chair")
	assert.True(t, strings.HasSuffix(out, ")."))
}
