// Package runner walks a dialogue graph one node at a time, resolving player
// choices into direct jumps, dice-gated jumps or terminal actions.
//
// A Runner is driven from a single goroutine (typically the UI loop). Dice
// checks never block: the runner hands a resume callback to the DicePrompt
// and carries on once it is called. Any transition made in the meantime
// turns that callback into a no-op.
package runner

import (
	"errors"
	"log/slog"

	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
)

var (
	ErrNoGraph               = errors.New("no dialogue graph set")
	ErrNoStartNode           = errors.New("dialogue graph has no valid start node")
	ErrNotRunning            = errors.New("dialogue is not running")
	ErrInvalidOptionIndex    = errors.New("invalid option index")
	ErrDanglingReference     = errors.New("next node not found")
	ErrUnresolvableDiceCheck = errors.New("dice check requested but no dice prompt configured")
)

// State is the runner's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingChoice
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingChoice:
		return "awaiting_choice"
	default:
		return "unknown"
	}
}

// Runner is the dialogue state machine.
type Runner struct {
	graph   *dialogue.Graph
	dice    DicePrompt
	actions ActionTrigger
	logger  *slog.Logger

	current *dialogue.Node
	running bool

	// generation changes on every transition; a dice resume only applies if
	// it still matches the value captured when the check was opened.
	generation uint64
	pending    uint64 // generation of the outstanding dice check, 0 if none

	observers []subscription
	nextSubID int
}

type subscription struct {
	id int
	p  Presenter
}

// Option configures a Runner.
type Option func(*Runner)

func WithGraph(g *dialogue.Graph) Option {
	return func(r *Runner) { r.graph = g }
}

func WithDicePrompt(d DicePrompt) Option {
	return func(r *Runner) { r.dice = d }
}

func WithActionTrigger(a ActionTrigger) Option {
	return func(r *Runner) { r.actions = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates an idle runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Subscribe registers a presenter. Presenters are notified synchronously in
// subscription order. The returned func removes it.
func (r *Runner) Subscribe(p Presenter) (unsubscribe func()) {
	r.nextSubID++
	id := r.nextSubID
	r.observers = append(r.observers, subscription{id: id, p: p})
	return func() {
		for i, s := range r.observers {
			if s.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Graph returns the active graph, if any.
func (r *Runner) Graph() *dialogue.Graph { return r.graph }

// Current returns the node awaiting a choice, or nil when idle.
func (r *Runner) Current() *dialogue.Node { return r.current }

// IsRunning reports whether a conversation is in progress.
func (r *Runner) IsRunning() bool { return r.running }

// State reports the lifecycle state.
func (r *Runner) State() State {
	if r.running && r.current != nil {
		return StateAwaitingChoice
	}
	return StateIdle
}

// DiceCheckPending reports whether a dice check is waiting on its resume
// callback for the current node.
func (r *Runner) DiceCheckPending() bool {
	return r.pending != 0 && r.pending == r.generation
}

// Begin starts a conversation at the graph's start node. A nil graph keeps
// the one already configured. On failure the runner is left Idle with its
// previous graph.
func (r *Runner) Begin(g *dialogue.Graph) error {
	if g == nil {
		g = r.graph
	}
	if g == nil {
		r.logger.Error("Begin called with no graph set")
		r.abandon()
		return ErrNoGraph
	}

	start := g.StartNode()
	if start == nil {
		r.logger.Error("Graph has no valid start node", "start_node", g.StartNodeGUID())
		r.abandon()
		return ErrNoStartNode
	}

	r.graph = g
	r.running = true
	r.enter(start)
	return nil
}

// ChooseOption resolves the option at index on the current node.
func (r *Runner) ChooseOption(index int) error {
	if !r.running || r.current == nil {
		r.logger.Warn("ChooseOption called while dialogue is not running", "index", index)
		return ErrNotRunning
	}
	if index < 0 || index >= len(r.current.Options) {
		r.logger.Warn("Invalid option index",
			"index", index,
			"node", r.current.GUID,
			"option_count", len(r.current.Options))
		return ErrInvalidOptionIndex
	}

	opt := r.current.Options[index]
	r.logger.Debug("Option chosen", "node", r.current.GUID, "index", index, "mode", opt.Mode())

	switch opt.Mode() {
	case dialogue.ModeDice:
		return r.openDiceCheck(opt)
	case dialogue.ModeAction:
		r.triggerAction(opt.ActionName())
		return nil
	default:
		return r.ContinueTo(opt.NextNodeGUID)
	}
}

// ContinueTo moves to the node with the given GUID. An empty GUID ends the
// conversation, as does a GUID missing from the graph.
func (r *Runner) ContinueTo(guid string) error {
	if !r.running {
		r.logger.Warn("ContinueTo called while dialogue is not running", "next", guid)
		return ErrNotRunning
	}
	if guid == "" {
		r.End()
		return nil
	}

	next := r.graph.Node(guid)
	if next == nil {
		r.logger.Warn("Next node not found, ending dialogue", "next", guid)
		r.End()
		return ErrDanglingReference
	}

	r.enter(next)
	return nil
}

// End stops the conversation and tells presenters with a nil node. Calling it
// again while idle does nothing.
func (r *Runner) End() {
	if !r.running && r.current == nil {
		return
	}
	r.running = false
	r.current = nil
	r.generation++
	r.pending = 0

	r.logger.Debug("Dialogue ended")
	for _, s := range r.snapshot() {
		s.p.NodeEntered(nil)
	}
}

// abandon drops back to idle after a failed Begin. Any dice check still
// waiting from the previous conversation becomes stale.
func (r *Runner) abandon() {
	if r.running || r.current != nil {
		r.End()
		return
	}
	r.generation++
	r.pending = 0
}

func (r *Runner) enter(node *dialogue.Node) {
	r.current = node
	r.generation++
	r.pending = 0

	r.logger.Debug("Node entered", "node", node.GUID, "speaker", node.Speaker, "options", len(node.Options))
	labels := node.Labels()
	for _, s := range r.snapshot() {
		s.p.NodeEntered(node)
		s.p.OptionsAvailable(labels)
	}
}

// snapshot lets presenters unsubscribe from inside a notification.
func (r *Runner) snapshot() []subscription {
	return append([]subscription(nil), r.observers...)
}

func (r *Runner) openDiceCheck(opt dialogue.Option) error {
	if r.dice == nil {
		r.logger.Warn("Dice check required but no dice prompt configured, ending dialogue", "prompt", opt.DicePrompt)
		r.End()
		return ErrUnresolvableDiceCheck
	}

	gen := r.generation
	r.pending = gen
	resumed := false

	r.dice.Open(opt.DicePrompt, opt.Target, func(outcome int) {
		if resumed {
			r.logger.Warn("Dice check resumed more than once, ignoring", "outcome", outcome)
			return
		}
		resumed = true
		if gen != r.generation || !r.running {
			r.logger.Info("Stale dice check resumed, ignoring", "outcome", outcome, "prompt", opt.DicePrompt)
			return
		}
		r.pending = 0

		success := dice.Succeeds(outcome, opt.Target)
		r.logger.Debug("Dice check resolved",
			"prompt", opt.DicePrompt,
			"outcome", outcome,
			"target", opt.Target,
			"success", success)
		if err := r.ContinueTo(opt.NextFor(success)); err != nil {
			r.logger.Warn("Dice check transition failed", "error", err)
		}
	})
	return nil
}

func (r *Runner) triggerAction(action string) {
	if r.actions == nil {
		r.logger.Warn("Terminal action requested but no action trigger configured", "action", action)
	} else {
		r.logger.Info("Triggering terminal action", "action", action)
		r.actions.Trigger(action)
	}
	r.End()
}
