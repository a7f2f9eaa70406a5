package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite is a scripted playthrough of one dialogue.
// It either has Steps, or is a sequence that references other Cases.
type TestSuite struct {
	Name     string     `yaml:"name"`
	Dialogue string     `yaml:"dialogue,omitempty"` // graph filename in storage
	PC       string     `yaml:"pc,omitempty"`       // optional PC whose modifiers apply to rolls
	Seed     uint64     `yaml:"seed,omitempty"`     // seeds "roll: 0" steps
	Steps    []TestStep `yaml:"steps,omitempty"`
	Cases    []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep performs one player action and checks the result. Exactly one of
// Choose, Continue or Roll should be set; a step with none only checks.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Choose       int          `yaml:"choose,omitempty"`   // 1-based option number
	Continue     bool         `yaml:"continue,omitempty"` // close a node with no options
	Roll         *int         `yaml:"roll,omitempty"`     // die face for the open check, 0 draws from Seed
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	Node         *string  `yaml:"node,omitempty"`
	Speaker      *string  `yaml:"speaker,omitempty"`
	LineContains []string `yaml:"line_contains,omitempty"`
	Options      []string `yaml:"options,omitempty"` // exact labels, in order
	IsEnded      *bool    `yaml:"is_ended,omitempty"`
	Action       *string  `yaml:"action,omitempty"`
	DicePending  *bool    `yaml:"dice_pending,omitempty"`
	Success      *bool    `yaml:"success,omitempty"` // outcome of the roll in this step
	Error        string   `yaml:"error,omitempty"`   // substring of the error the step must return
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job            TestJob
	Results        []TestResult
	Error          error
	Duration       time.Duration
	ConversationID uuid.UUID
}
