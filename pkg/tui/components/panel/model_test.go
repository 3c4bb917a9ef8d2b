package panel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tableflip.dev/fedash/pkg/tui/theme"
)

func TestCursorFollowsSelection(t *testing.T) {
	m := New("Contexts", "none", theme.Default().Panel)
	m.SetItems([]string{"p/a", "p/b", "p/c"}, "p/b")

	cur, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, "p/b", cur)

	m.Down()
	m.Down()
	cur, _ = m.Current()
	assert.Equal(t, "p/c", cur)

	m.Up()
	m.Up()
	m.Up()
	cur, _ = m.Current()
	assert.Equal(t, "p/a", cur)
}

func TestDiagnosticEntriesAreNotSelectable(t *testing.T) {
	m := New("Collections", "none", theme.Default().Panel)
	m.SetItems([]string{"Error: permission denied"}, "")

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestEmptyPanel(t *testing.T) {
	m := New("Collections", "No collections", theme.Default().Panel)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Contains(t, m.View(30), "No collections")
}

func TestViewTruncatesLongEntries(t *testing.T) {
	m := New("Collections", "none", theme.Default().Panel)
	m.SetItems([]string{strings.Repeat("x", 80)}, "")

	for _, line := range strings.Split(m.View(24), "\n") {
		assert.LessOrEqual(t, len([]rune(stripped(line))), 24)
	}
}

func stripped(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
