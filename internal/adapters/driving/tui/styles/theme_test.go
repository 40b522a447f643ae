package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
	assert.NotEmpty(t, string(theme.Link))
}

func TestDefaultTheme_SpeakersAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Primary, theme.Secondary)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_UsesThemeColours(t *testing.T) {
	theme := &Theme{
		Primary:   lipgloss.Color("#000001"),
		Secondary: lipgloss.Color("#000002"),
		Link:      lipgloss.Color("#000003"),
	}

	s := NewStyles(theme)

	assert.Same(t, theme, s.Theme())
	assert.Equal(t, theme.Primary, s.Title.GetForeground())
	assert.Equal(t, theme.Primary, s.BotBubble.GetBorderTopForeground())
	assert.Equal(t, theme.Secondary, s.UserBubble.GetBorderTopForeground())
	assert.Equal(t, theme.Link, s.Link.GetForeground())
}

func TestStyles_RenderBubbles(t *testing.T) {
	s := DefaultStyles()

	user := s.UserBubble.Render("hello")
	bot := s.BotBubble.Render("hi there")

	assert.Contains(t, user, "hello")
	assert.Contains(t, bot, "hi there")
	assert.Greater(t, lipgloss.Height(bot), 1)
}
