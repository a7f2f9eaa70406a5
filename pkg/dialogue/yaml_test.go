package dialogue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tavernYAML = `
startNodeGuid: greet
nodes:
  - guid: greet
    speaker: Barkeep
    line: What'll it be?
    options:
      - text: Ale, please.
        nextNodeGuid: ale
      - text: Arm wrestle the bouncer
        requiresDiceCheck: true
        dicePrompt: Strength Check DC 12
        target: 12
        nextOnSuccessGuid: win
        nextOnFailGuid: lose
      - text: Pick a pocket
        requiresDiceCheck: true
        dicePrompt: Dexterity Check
        nextOnSuccessGuid: win
        nextOnFailGuid: lose
      - text: Leave
        loadCreditsScene: true
  - guid: ale
    speaker: Barkeep
    line: Coming right up.
  - guid: win
    speaker: Bouncer
    line: Ow.
  - guid: lose
    speaker: Bouncer
    line: Ha!
`

func TestLoadYAML(t *testing.T) {
	g, err := LoadYAML([]byte(tavernYAML))
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	start := g.StartNode()
	require.NotNil(t, start)
	assert.Equal(t, []string{"Ale, please.", "Arm wrestle the bouncer", "Pick a pocket", "Leave"}, start.Labels())
	assert.Equal(t, 12, start.Options[1].Target)
	assert.Equal(t, DefaultTarget, start.Options[2].Target)
	assert.Equal(t, ModeAction, start.Options[3].Mode())
	assert.Empty(t, g.Problems())
}

func TestLoadYAML_MatchesJSON(t *testing.T) {
	fromJSON, err := Load([]byte(tavernJSON))
	require.NoError(t, err)

	fromYAML, err := LoadYAML([]byte(tavernYAML))
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Node("greet").Options[1], fromYAML.Node("greet").Options[1])
	assert.Equal(t, fromJSON.Node("lose").Line, fromYAML.Node("lose").Line)
}

func TestLoadYAML_Errors(t *testing.T) {
	_, err := LoadYAML([]byte("nodes: [unclosed"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = LoadYAML([]byte("nodes:\n  - guid: a\n  - guid: a\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateGUID))
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		filename string
		data     string
		yaml     bool
	}{
		{"tavern.json", tavernJSON, false},
		{"tavern.yaml", tavernYAML, true},
		{"tavern.YML", tavernYAML, true},
		{"tavern", tavernJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.yaml, IsYAML(tt.filename))
			g, err := LoadFile(tt.filename, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, "greet", g.StartNodeGUID())
		})
	}

	_, err := LoadFile("tavern.json", []byte(tavernYAML))
	assert.True(t, errors.Is(err, ErrMalformed), "YAML under a .json name is read as JSON")
}
