package tags

import (
	"errors"
	"time"
)

// LineDisplay shows a single line for a while.
type LineDisplay interface {
	ShowLine(line string, duration time.Duration)
}

// Player pulls lines from a Tracker and hands them to a display.
type Player struct {
	tracker         *Tracker
	display         LineDisplay
	defaultTag      string
	defaultDuration time.Duration
}

// NewPlayer creates a player. defaultDuration is used when Play gets a
// non-positive duration.
func NewPlayer(tracker *Tracker, display LineDisplay, defaultTag string, defaultDuration time.Duration) *Player {
	return &Player{
		tracker:         tracker,
		display:         display,
		defaultTag:      defaultTag,
		defaultDuration: defaultDuration,
	}
}

// Play shows the next line of the named tag. It reports whether anything was
// shown. Cycle errors are returned; unknown tags and exhausted chains are not
// shown and not returned as errors.
func (p *Player) Play(name string, duration time.Duration) (bool, error) {
	if p.tracker == nil || p.display == nil {
		return false, nil
	}

	line, err := p.tracker.NextLine(name)
	if err != nil {
		if errors.Is(err, ErrUnknownTag) {
			return false, nil
		}
		return false, err
	}
	if line == "" {
		return false, nil
	}

	if duration <= 0 {
		duration = p.defaultDuration
	}
	p.display.ShowLine(line, duration)
	return true, nil
}

// PlayDefault plays the default tag for the default duration.
func (p *Player) PlayDefault() (bool, error) {
	return p.Play(p.defaultTag, p.defaultDuration)
}
