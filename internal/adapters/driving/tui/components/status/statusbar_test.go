package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.False(t, bar.Busy())
	assert.Nil(t, bar.Init())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_SetStateStartsSpinnerOnce(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.NotNil(t, bar.SetState(StateThinking))
	assert.True(t, bar.Busy())

	// Already spinning.
	assert.Nil(t, bar.SetState(StateRefreshing))

	assert.Nil(t, bar.SetState(StateReady))
	assert.False(t, bar.Busy())
}

func TestBar_UpdateTicksOnlyWhileBusy(t *testing.T) {
	bar := NewBar(nil, nil)
	tick := spinner.TickMsg{}

	_, cmd := bar.Update(tick)
	assert.Nil(t, cmd)

	bar.SetState(StateThinking)
	_, cmd = bar.Update(bar.spinner.Tick())
	assert.NotNil(t, cmd)

	_, cmd = bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "Refreshed 12 products", "Refreshed 12 products"},
		{"thinking", StateThinking, "", "Thinking..."},
		{"refreshing", StateRefreshing, "", "Refreshing data..."},
		{"error", StateError, "boom", "Error: boom"},
		{"bare error", StateError, "", "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(160)

	assert.Contains(t, bar.View(), "ctrl+r: refresh data")

	bar.SetHints(km.ProductsHelp())
	view := bar.View()
	assert.Contains(t, view, "enter: ask")
	assert.NotContains(t, view, "refresh data")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}

func TestBar_Width(t *testing.T) {
	bar := NewBar(nil, nil)
	assert.Equal(t, 80, bar.Width())

	bar.SetWidth(100)
	assert.Equal(t, 100, bar.Width())
}
