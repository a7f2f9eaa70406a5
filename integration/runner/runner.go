package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
	"gopkg.in/yaml.v2"

	"github.com/jwebster45206/dialogue-engine/internal/logger"
	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
	dlgrunner "github.com/jwebster45206/dialogue-engine/pkg/runner"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted suites against dialogues loaded from storage
type Runner struct {
	Storage           store.Storage
	Log               *slog.Logger
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	DialogueOverride  string // If set, overrides the dialogue for all test cases
}

// NewRunner creates a new test runner
func NewRunner(storage store.Storage, log *slog.Logger) *Runner {
	return &Runner{
		Storage:           storage,
		Log:               log,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.UnmarshalStrict(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	return loadWithExpansion(filename, casesDir, nil)
}

func loadWithExpansion(filename, casesDir string, stack []string) ([]TestJob, error) {
	if slices.Contains(stack, filename) {
		return nil, fmt.Errorf("case %s references itself: %s", filename, strings.Join(append(stack, filename), " -> "))
	}

	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)
		subJobs, err := loadWithExpansion(casePath, casesDir, append(stack, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results:        make([]TestResult, 0, len(suite.Steps)),
		ConversationID: uuid.New(),
	}

	filename := suite.Dialogue
	if r.DialogueOverride != "" {
		filename = r.DialogueOverride
	}
	g, err := r.Storage.GetGraph(ctx, filename)
	if err != nil {
		result.Error = fmt.Errorf("failed to load dialogue %s: %w", filename, err)
		return result, result.Error
	}

	pcActor, err := r.loadPC(ctx, suite.PC)
	if err != nil {
		result.Error = err
		return result, err
	}

	log := logger.WithConversation(r.Log, result.ConversationID.String())
	p := &playthrough{
		seeded: dice.NewChecker(dice.NewSeededResolver(suite.Seed), pcActor),
		actor:  pcActor,
	}
	rn := dlgrunner.New(
		dlgrunner.WithDicePrompt(p),
		dlgrunner.WithActionTrigger(p),
		dlgrunner.WithLogger(log),
	)
	rn.Subscribe(p)

	if err := rn.Begin(g); err != nil {
		result.Error = fmt.Errorf("failed to begin dialogue %s: %w", filename, err)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		if ctx.Err() != nil {
			result.Error = ctx.Err()
			break
		}

		stepName := step.Name
		if stepName == "" {
			stepName = fmt.Sprintf("step %d", i+1)
		}
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), stepName)

		stepStart := time.Now()
		stepErr := p.checkExpectations(step.Expectations, rn, p.execute(rn, step))
		stepResult := TestResult{
			TestName: suite.Name,
			StepName: stepName,
			Success:  stepErr == nil,
			Error:    stepErr,
			Duration: time.Since(stepStart),
		}
		result.Results = append(result.Results, stepResult)

		if stepErr != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), stepName, stepErr)
			if result.Error == nil {
				result.Error = fmt.Errorf("step '%s' failed: %w", stepName, stepErr)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), stepName, stepResult.Duration)
	}

	rn.End()
	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) loadPC(ctx context.Context, pcID string) (*d20.Actor, error) {
	if pcID == "" {
		return nil, nil
	}
	spec, err := r.Storage.GetPCSpec(ctx, pcID)
	if err != nil {
		return nil, fmt.Errorf("failed to load PC %s: %w", pcID, err)
	}
	pc, err := actor.NewPCFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build PC %s: %w", pcID, err)
	}
	return pc.Actor, nil
}

// playthrough records what the dialogue runner reports, the way a UI would
type playthrough struct {
	current *dialogue.Node
	options []string
	ended   bool
	action  string

	prompt string
	target int
	resume func(int)
	rolled *dice.Result

	seeded *dice.Checker
	actor  *d20.Actor
}

func (p *playthrough) NodeEntered(node *dialogue.Node) {
	p.current = node
	p.resume = nil
	p.ended = node == nil
	if node == nil {
		p.options = nil
	}
}

func (p *playthrough) OptionsAvailable(labels []string) {
	p.options = labels
}

func (p *playthrough) Open(prompt string, target int, resume func(int)) {
	p.prompt = prompt
	p.target = target
	p.resume = resume
}

func (p *playthrough) Trigger(action string) {
	p.action = action
}

var errNoOpenCheck = errors.New("no dice check is open")

func (p *playthrough) execute(rn *dlgrunner.Runner, step TestStep) error {
	p.rolled = nil
	switch {
	case step.Roll != nil:
		if p.resume == nil {
			return errNoOpenCheck
		}
		checker := p.seeded
		if *step.Roll > 0 {
			checker = dice.NewChecker(dice.NewResolver(face(*step.Roll)), p.actor)
		}
		res := checker.Check(p.prompt, p.target)
		p.rolled = &res
		resume := p.resume
		p.resume = nil
		resume(res.Total)
		return nil
	case step.Choose > 0:
		return rn.ChooseOption(step.Choose - 1)
	case step.Continue:
		if len(p.options) > 0 {
			return fmt.Errorf("node has %d options; choose one instead", len(p.options))
		}
		return rn.ContinueTo("")
	}
	return nil
}

func (p *playthrough) checkExpectations(exp Expectations, rn *dlgrunner.Runner, stepErr error) error {
	var problems []error

	switch {
	case exp.Error == "" && stepErr != nil:
		return fmt.Errorf("unexpected error: %w", stepErr)
	case exp.Error != "" && stepErr == nil:
		problems = append(problems, fmt.Errorf("expected error containing %q, got none", exp.Error))
	case exp.Error != "" && !strings.Contains(stepErr.Error(), exp.Error):
		problems = append(problems, fmt.Errorf("expected error containing %q, got %q", exp.Error, stepErr.Error()))
	}

	guid, speaker, line := "", "", ""
	if p.current != nil {
		guid, speaker, line = p.current.GUID, p.current.Speaker, p.current.Line
	}

	if exp.Node != nil && *exp.Node != guid {
		problems = append(problems, fmt.Errorf("node: expected %q, got %q", *exp.Node, guid))
	}
	if exp.Speaker != nil && *exp.Speaker != speaker {
		problems = append(problems, fmt.Errorf("speaker: expected %q, got %q", *exp.Speaker, speaker))
	}
	for _, want := range exp.LineContains {
		if !strings.Contains(line, want) {
			problems = append(problems, fmt.Errorf("line %q does not contain %q", line, want))
		}
	}
	if exp.Options != nil && !slices.Equal(exp.Options, p.options) {
		problems = append(problems, fmt.Errorf("options: expected %q, got %q", exp.Options, p.options))
	}
	if exp.IsEnded != nil && *exp.IsEnded != p.ended {
		problems = append(problems, fmt.Errorf("is_ended: expected %v, got %v", *exp.IsEnded, p.ended))
	}
	if exp.Action != nil && *exp.Action != p.action {
		problems = append(problems, fmt.Errorf("action: expected %q, got %q", *exp.Action, p.action))
	}
	if exp.DicePending != nil && *exp.DicePending != rn.DiceCheckPending() {
		problems = append(problems, fmt.Errorf("dice_pending: expected %v, got %v", *exp.DicePending, rn.DiceCheckPending()))
	}
	if exp.Success != nil {
		switch {
		case p.rolled == nil:
			problems = append(problems, errors.New("success: no roll in this step"))
		case p.rolled.Success != *exp.Success:
			problems = append(problems, fmt.Errorf("success: expected %v, rolled %d%+d vs %d",
				*exp.Success, p.rolled.Natural, p.rolled.Modifier, p.rolled.Target))
		}
	}

	return errors.Join(problems...)
}

// face always lands on the same side of the die
type face int

func (f face) IntN(n int) int {
	return min(max(int(f)-1, 0), n-1)
}
