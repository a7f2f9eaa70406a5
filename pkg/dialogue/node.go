package dialogue

import "encoding/json"

// DefaultTarget is used when an option's data omits "target".
const DefaultTarget = 10

// ActionCredits is the terminal action implied by loadCreditsScene.
const ActionCredits = "credits"

// Mode identifies how choosing an option moves the conversation.
type Mode int

const (
	ModeDirect Mode = iota // jump to NextNodeGUID, or end when empty
	ModeDice               // dice check against Target
	ModeAction             // trigger a terminal action, no further nodes
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeDice:
		return "dice"
	case ModeAction:
		return "action"
	default:
		return "unknown"
	}
}

// Node is one dialogue beat: who speaks, what they say, and what the player
// can answer. Graph accessors hand out copies, so editing one never changes
// the graph.
type Node struct {
	GUID    string   `json:"guid" yaml:"guid"`
	Speaker string   `json:"speaker" yaml:"speaker"`
	Line    string   `json:"line" yaml:"line"`
	Options []Option `json:"options" yaml:"options"`
}

// Labels returns the option texts in presentation order.
func (n *Node) Labels() []string {
	labels := make([]string, 0, len(n.Options))
	for _, opt := range n.Options {
		labels = append(labels, opt.Text)
	}
	return labels
}

// Option is a single player choice. Node references are GUID strings that
// are resolved through the Graph at traversal time.
type Option struct {
	Text string `json:"text" yaml:"text"`

	NextNodeGUID string `json:"nextNodeGuid" yaml:"nextNodeGuid"`

	LoadCreditsScene bool   `json:"loadCreditsScene" yaml:"loadCreditsScene"`
	Action           string `json:"action,omitempty" yaml:"action,omitempty"` // terminal action name, overrides "credits"

	RequiresDiceCheck bool   `json:"requiresDiceCheck" yaml:"requiresDiceCheck"`
	DicePrompt        string `json:"dicePrompt" yaml:"dicePrompt"`
	Target            int    `json:"target" yaml:"target"`
	NextOnSuccessGUID string `json:"nextOnSuccessGuid" yaml:"nextOnSuccessGuid"`
	NextOnFailGUID    string `json:"nextOnFailGuid" yaml:"nextOnFailGuid"`
}

// UnmarshalJSON applies DefaultTarget when the target field is absent.
func (o *Option) UnmarshalJSON(data []byte) error {
	type rawOption Option
	raw := rawOption{Target: DefaultTarget}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Option(raw)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (o *Option) UnmarshalYAML(unmarshal func(any) error) error {
	type rawOption Option
	raw := rawOption{Target: DefaultTarget}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*o = Option(raw)
	return nil
}

// Mode reports the transition mode. A dice check wins over a terminal
// action, which wins over a direct jump.
func (o Option) Mode() Mode {
	switch {
	case o.RequiresDiceCheck:
		return ModeDice
	case o.LoadCreditsScene || o.Action != "":
		return ModeAction
	default:
		return ModeDirect
	}
}

// ActionName returns the terminal action for ModeAction options.
func (o Option) ActionName() string {
	if o.Action != "" {
		return o.Action
	}
	if o.LoadCreditsScene {
		return ActionCredits
	}
	return ""
}

// NextFor returns the target GUID for a resolved dice check.
func (o Option) NextFor(success bool) string {
	if success {
		return o.NextOnSuccessGUID
	}
	return o.NextOnFailGUID
}
