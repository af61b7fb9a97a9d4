package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Success))
	assert.NotEmpty(t, string(theme.Warning))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
}

func TestDefaultTheme_ColoursAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	colours := []lipgloss.Color{
		theme.Primary,
		theme.Secondary,
		theme.Success,
		theme.Warning,
		theme.Error,
	}

	seen := make(map[string]bool)
	for _, c := range colours {
		s := string(c)
		assert.False(t, seen[s], "duplicate colour: %s", s)
		seen[s] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.Equal(t, DefaultTheme(), styles.Theme())
}

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	require.NotNil(t, styles)
	assert.Equal(t, DefaultTheme().Primary, styles.Theme().Primary)
}

func TestStyles_Row(t *testing.T) {
	row := DefaultStyles().Row("Records", "12")

	assert.Contains(t, row, "Records")
	assert.Contains(t, row, "12")
	assert.False(t, strings.Contains(row, "\n"))
}

func TestStyles_Outcome(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success.GetForeground(), s.Outcome(domain.OutcomeRecords).GetForeground())
	assert.Equal(t, s.Error.GetForeground(), s.Outcome(domain.OutcomeAllFailed).GetForeground())
	assert.Equal(t, s.Warning.GetForeground(), s.Outcome(domain.OutcomeNoMatches).GetForeground())
}

func TestStyles_State(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success.GetForeground(), s.State(domain.RunDone).GetForeground())
	assert.Equal(t, s.Error.GetForeground(), s.State(domain.RunFailed).GetForeground())
	assert.Equal(t, s.Warning.GetForeground(), s.State(domain.RunCancelled).GetForeground())
}
