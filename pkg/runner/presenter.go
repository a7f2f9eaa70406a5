package runner

import "github.com/jwebster45206/dialogue-engine/pkg/dialogue"

// Presenter displays the conversation. NodeEntered receives nil when the
// conversation ends. OptionsAvailable follows every non-nil NodeEntered;
// an empty slice means the node has no choices and the presenter should
// offer a way to close the dialogue.
type Presenter interface {
	NodeEntered(node *dialogue.Node)
	OptionsAvailable(labels []string)
}

// DicePrompt runs a dice check outside the runner. Implementations must call
// resume exactly once, whenever the roll is done.
type DicePrompt interface {
	Open(prompt string, target int, resume func(outcome int))
}

// ActionTrigger performs terminal actions such as rolling the credits.
type ActionTrigger interface {
	Trigger(action string)
}

// PresenterFuncs adapts plain functions to Presenter. Nil fields are skipped.
type PresenterFuncs struct {
	OnNodeEntered      func(node *dialogue.Node)
	OnOptionsAvailable func(labels []string)
}

func (p PresenterFuncs) NodeEntered(node *dialogue.Node) {
	if p.OnNodeEntered != nil {
		p.OnNodeEntered(node)
	}
}

func (p PresenterFuncs) OptionsAvailable(labels []string) {
	if p.OnOptionsAvailable != nil {
		p.OnOptionsAvailable(labels)
	}
}

// DicePromptFunc adapts a function to DicePrompt.
type DicePromptFunc func(prompt string, target int, resume func(outcome int))

func (f DicePromptFunc) Open(prompt string, target int, resume func(outcome int)) {
	f(prompt, target, resume)
}

// ActionTriggerFunc adapts a function to ActionTrigger.
type ActionTriggerFunc func(action string)

func (f ActionTriggerFunc) Trigger(action string) {
	f(action)
}
