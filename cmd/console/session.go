package main

import (
	"time"

	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
	"github.com/jwebster45206/dialogue-engine/pkg/runner"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

type entryKind int

const (
	entryLine entryKind = iota
	entryChoice
	entryRoll
	entryBark
	entrySystem
)

type transcriptEntry struct {
	kind    entryKind
	speaker string
	text    string
}

// pendingRoll is a dice check the player has not finished yet
type pendingRoll struct {
	prompt string
	target int
	resume func(outcome int)
	result *dice.Result
}

// session collects everything the runner tells the console. The UI model is
// copied on every update, so shared state lives behind this pointer.
type session struct {
	transcript []transcriptEntry
	current    *dialogue.Node
	options    []string
	ended      bool

	roll   *pendingRoll
	action string

	bark     string
	barkFor  time.Duration
	barkSeq  int
	barkSeen int
}

var (
	_ runner.Presenter     = (*session)(nil)
	_ runner.DicePrompt    = (*session)(nil)
	_ runner.ActionTrigger = (*session)(nil)
	_ tags.LineDisplay     = (*session)(nil)
)

func newSession() *session {
	return &session{}
}

func (s *session) NodeEntered(node *dialogue.Node) {
	s.current = node
	s.roll = nil
	if node == nil {
		s.ended = true
		s.options = nil
		s.add(entrySystem, "", "The conversation is over.")
		return
	}
	s.ended = false
	s.add(entryLine, node.Speaker, node.Line)
}

func (s *session) OptionsAvailable(labels []string) {
	s.options = labels
}

func (s *session) Open(prompt string, target int, resume func(outcome int)) {
	s.roll = &pendingRoll{prompt: prompt, target: target, resume: resume}
}

func (s *session) Trigger(action string) {
	s.action = action
	s.add(entrySystem, "", "~ "+action+" ~")
}

func (s *session) ShowLine(line string, d time.Duration) {
	s.bark = line
	s.barkFor = d
	s.barkSeq++
	s.add(entryBark, "", line)
}

// takeBark reports a bark shown since the last call, so the UI can schedule
// its expiry
func (s *session) takeBark() (seq int, d time.Duration, ok bool) {
	if s.barkSeq == s.barkSeen {
		return 0, 0, false
	}
	s.barkSeen = s.barkSeq
	return s.barkSeq, s.barkFor, true
}

func (s *session) expireBark(seq int) {
	if seq == s.barkSeq {
		s.bark = ""
	}
}

// rollDice resolves the pending check; resolving twice keeps the first result
func (s *session) rollDice(checker *dice.Checker) *dice.Result {
	if s.roll == nil {
		return nil
	}
	if s.roll.result == nil {
		res := checker.Check(s.roll.prompt, s.roll.target)
		s.roll.result = &res
	}
	return s.roll.result
}

// acceptRoll hands the outcome back to the runner
func (s *session) acceptRoll() bool {
	if s.roll == nil || s.roll.result == nil {
		return false
	}
	roll := s.roll
	s.roll = nil
	s.add(entryRoll, "", formatRoll(roll.prompt, *roll.result))
	roll.resume(roll.result.Total)
	return true
}

func (s *session) currentLine() string {
	if s.current == nil {
		return ""
	}
	return s.current.Line
}

func (s *session) add(kind entryKind, speaker, text string) {
	s.transcript = append(s.transcript, transcriptEntry{kind: kind, speaker: speaker, text: text})
}
