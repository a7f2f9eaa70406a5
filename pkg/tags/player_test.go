package tags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shownLine struct {
	line     string
	duration time.Duration
}

type fakeDisplay struct {
	shown []shownLine
}

func (f *fakeDisplay) ShowLine(line string, d time.Duration) {
	f.shown = append(f.shown, shownLine{line, d})
}

func TestPlayer(t *testing.T) {
	reg, err := LoadRegistry([]byte(barksJSON), testLogger())
	require.NoError(t, err)
	display := &fakeDisplay{}
	p := NewPlayer(NewTracker(reg, testLogger()), display, "crash", 3*time.Second)

	ok, err := p.PlayDefault()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Play("idle", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Play("idle", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Play("idle", 0)
	require.NoError(t, err)
	assert.False(t, ok, "exhausted tag shows nothing")

	ok, err = p.Play("unknown", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []shownLine{
		{"Ouch!", 3 * time.Second},
		{"Hmm.", 5 * time.Second},
		{"Nice weather.", 3 * time.Second},
	}, display.shown)
}

func TestPlayer_Cycle(t *testing.T) {
	reg := NewRegistry([]Tag{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}}, testLogger())
	p := NewPlayer(NewTracker(reg, testLogger()), &fakeDisplay{}, "a", time.Second)

	ok, err := p.PlayDefault()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestPlayer_NotWired(t *testing.T) {
	p := NewPlayer(nil, nil, "a", time.Second)
	ok, err := p.PlayDefault()
	assert.False(t, ok)
	assert.NoError(t, err)
}
