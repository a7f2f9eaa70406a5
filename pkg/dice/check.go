package dice

import (
	"math"
	"strings"
	"unicode"

	"github.com/jwebster45206/d20"
	"golang.org/x/text/cases"
)

// Result describes a resolved check.
type Result struct {
	Natural   int    // raw die face
	Modifier  int    // ability modifier applied to the face
	Total     int    // Natural + Modifier, the outcome reported to the runner
	Target    int
	Success   bool
	Attribute string // attribute the modifier came from, empty if none
}

// Checker rolls checks for a character. Prompts such as "Strength Check DC 12"
// pick up the modifier of the actor's matching attribute. With no actor every
// check is a plain roll.
type Checker struct {
	resolver *Resolver
	actor    *d20.Actor
	fold     cases.Caser
}

// NewChecker creates a checker. actor may be nil.
func NewChecker(resolver *Resolver, actor *d20.Actor) *Checker {
	return &Checker{
		resolver: resolver,
		actor:    actor,
		fold:     cases.Fold(),
	}
}

// Check rolls against target, applying the modifier named by prompt.
func (c *Checker) Check(prompt string, target int) Result {
	attr, mod := c.modifierFor(prompt)
	natural := c.resolver.Natural()
	total := natural + mod
	return Result{
		Natural:   natural,
		Modifier:  mod,
		Total:     total,
		Target:    target,
		Success:   Succeeds(total, target),
		Attribute: attr,
	}
}

func (c *Checker) modifierFor(prompt string) (string, int) {
	if c.actor == nil {
		return "", 0
	}
	word := strings.FieldsFunc(prompt, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(word) == 0 {
		return "", 0
	}
	attr := c.fold.String(word[0])
	value, ok := c.actor.Attribute(attr)
	if !ok {
		return "", 0
	}
	if abilities[attr] {
		return attr, AbilityModifier(value)
	}
	// skills and proficiencies are stored as flat bonuses
	return attr, value
}

var abilities = map[string]bool{
	"strength": true, "dexterity": true, "constitution": true,
	"intelligence": true, "wisdom": true, "charisma": true,
}

// AbilityModifier converts an ability score to its 5e modifier.
func AbilityModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}
