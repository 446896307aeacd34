package calculator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
)

var exitMarkers = []string{"exit", "cancel", "stop", "quit", "never mind", "nevermind", "forget it"}

var skipMarkers = []string{"skip", "pass", "next"}

// variantMarkers maps selection-stage phrasing onto a variant.
var variantMarkers = map[string][]string{
	store.CalcVariantQuick:     {"quick", "fast", "simple", "rough", "estimate"},
	store.CalcVariantDetailed:  {"detailed", "detail", "thorough", "full", "complete", "accurate"},
	store.CalcVariantPortfolio: {"portfolio", "retirement", "savings", "invest"},
}

// Manager drives the calculator dialogue state machine embedded in a
// conversation session. All transitions happen here; the router only
// checks whether a dialogue is active.
type Manager struct {
	parser     *AnswerParser
	calculator FinancialCalculator
	logger     *log.Logger
}

// NewManager creates a new calculator dialogue manager
func NewManager(llmProvider llm.LLMProvider, calculator FinancialCalculator, logger *log.Logger) *Manager {
	return &Manager{
		parser:     NewAnswerParser(llmProvider, logger),
		calculator: calculator,
		logger:     logger,
	}
}

// StartSelection begins a dialogue in the selecting state, asking the
// user which calculator they want.
func (m *Manager) StartSelection(session *store.Session) string {
	session.Calculator = &store.CalculatorSession{
		State:   store.CalcStateSelecting,
		Answers: make(map[string]interface{}),
	}
	m.logger.Printf("[CALC] Selection started for session %s", session.ID)
	return selectionPrompt()
}

// Start begins a dialogue directly in the active state with the given
// variant. An unknown variant falls back to selection.
func (m *Manager) Start(session *store.Session, variant string) string {
	questions := QuestionsFor(variant)
	if questions == nil {
		m.logger.Printf("[CALC] Unknown variant %q, falling back to selection", variant)
		return m.StartSelection(session)
	}

	session.Calculator = &store.CalculatorSession{
		Variant:   variant,
		State:     store.CalcStateActive,
		Questions: questions,
		Answers:   make(map[string]interface{}),
	}
	m.logger.Printf("[CALC] Started %s calculator for session %s (%d questions)", variant, session.ID, len(questions))

	return fmt.Sprintf("Let's run the %s calculator. I'll ask a few questions.\n\n%s", variant, questions[0].Prompt)
}

// Continue handles one user turn while a dialogue is active. It owns
// every state transition; the reply is what the assistant should say.
func (m *Manager) Continue(ctx context.Context, session *store.Session, input string) string {
	cs := session.Calculator
	if cs == nil {
		return m.StartSelection(session)
	}

	if isExit(input) {
		cs.State = store.CalcStateExited
		session.Calculator = nil
		m.logger.Printf("[CALC] Session %s exited the calculator", session.ID)
		return "No problem, I've closed the calculator. What else can I help you with?"
	}

	switch cs.State {
	case store.CalcStateSelecting:
		return m.handleSelection(session, input)
	case store.CalcStateActive:
		return m.handleAnswer(ctx, session, input)
	case store.CalcStateError:
		// Any non-exit input retries the computation.
		cs.State = store.CalcStateActive
		return m.complete(ctx, session)
	default:
		session.Calculator = nil
		return selectionPrompt()
	}
}

func (m *Manager) handleSelection(session *store.Session, input string) string {
	lower := strings.ToLower(input)
	for variant, markers := range variantMarkers {
		for _, marker := range markers {
			if strings.Contains(lower, marker) {
				return m.Start(session, variant)
			}
		}
	}
	// Unmatched selection re-prompts; the dialogue stays in selecting.
	return "I didn't catch which calculator you'd like.\n\n" + selectionPrompt()
}

func (m *Manager) handleAnswer(ctx context.Context, session *store.Session, input string) string {
	cs := session.Calculator
	q := cs.CurrentQuestion()
	if q == nil {
		return m.complete(ctx, session)
	}

	// An identical resend of the answer that just advanced the dialogue
	// is treated as a duplicate delivery and re-prompts once. Clearing
	// the guard lets a genuine repeat value through on the next turn.
	if cs.LastAccepted != "" && strings.TrimSpace(input) == cs.LastAccepted {
		cs.LastAccepted = ""
		return fmt.Sprintf("Got it. %s", q.Prompt)
	}

	if !q.Required && isSkip(input) {
		if cs.Skipped == nil {
			cs.Skipped = make(map[string]bool)
		}
		cs.Skipped[q.ID] = true
		cs.Index++
		cs.LastAccepted = ""
		return m.nextPromptOrComplete(ctx, session)
	}

	value, err := m.parser.Parse(ctx, q, input)
	if err != nil {
		var oor *ErrOutOfRange
		if errors.As(err, &oor) {
			return fmt.Sprintf("That value looks out of range (expected between %.0f and %.0f). %s For example: %s", oor.Min, oor.Max, q.Prompt, q.Example)
		}
		m.logger.Printf("[CALC] Unparseable answer for question %s: %q", q.ID, input)
		return fmt.Sprintf("Sorry, I couldn't read that. %s For example: %s", q.Prompt, q.Example)
	}

	cs.Answers[q.ID] = value
	cs.Index++
	cs.LastAccepted = strings.TrimSpace(input)

	return m.nextPromptOrComplete(ctx, session)
}

func (m *Manager) nextPromptOrComplete(ctx context.Context, session *store.Session) string {
	cs := session.Calculator

	// Pass over questions already answered or skipped, e.g. after
	// looping back to fill a gap.
	for {
		q := cs.CurrentQuestion()
		if q == nil {
			break
		}
		_, answered := cs.Answers[q.ID]
		if !answered && !cs.Skipped[q.ID] {
			break
		}
		cs.Index++
	}

	if next := cs.CurrentQuestion(); next != nil {
		suffix := ""
		if !next.Required {
			suffix = " (optional, say \"skip\" to move on)"
		}
		return next.Prompt + suffix
	}
	return m.complete(ctx, session)
}

// complete runs the calculation once the questionnaire is exhausted.
// A failed computation parks the dialogue in the error state; the next
// turn retries it.
func (m *Manager) complete(ctx context.Context, session *store.Session) string {
	cs := session.Calculator

	if missing := firstUnansweredRequired(cs); missing != nil {
		// Should not happen in normal flow; re-ask rather than compute
		// with holes in the profile.
		cs.Index = indexOf(cs, missing.ID)
		return missing.Prompt
	}
	if cs.AnsweredCount(false) < minOptionalAnswers[cs.Variant] {
		if opt := firstUnansweredOptional(cs); opt != nil {
			delete(cs.Skipped, opt.ID)
			cs.Index = indexOf(cs, opt.ID)
			return opt.Prompt + " (needed for this calculator)"
		}
	}

	result, err := m.calculator.Compute(ctx, cs.Variant, cs.Answers)
	if err != nil {
		cs.State = store.CalcStateError
		m.logger.Printf("[CALC] Computation failed for session %s: %v", session.ID, err)
		return "Something went wrong while computing your result. Say anything to retry, or \"exit\" to leave the calculator."
	}

	cs.State = store.CalcStateCompleted
	cs.Result = result.RecommendedAmt
	m.logger.Printf("[CALC] Session %s completed the %s calculator", session.ID, cs.Variant)

	reply := formatResult(result)

	// Clear the dialogue so normal routing resumes on the next turn.
	session.Calculator = nil
	return reply
}

func formatResult(result *ComputeResult) string {
	var sb strings.Builder
	sb.WriteString(result.Headline)
	sb.WriteString(fmt.Sprintf(": $%.0f\n\n", result.RecommendedAmt))

	// Stable breakdown order across runs.
	keys := make([]string, 0, len(result.Breakdown))
	for k := range result.Breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", strings.ReplaceAll(k, "_", " "), result.Breakdown[k]))
	}
	for _, note := range result.Notes {
		sb.WriteString("\n")
		sb.WriteString(note)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func selectionPrompt() string {
	return "Which calculator would you like?\n" +
		"- quick: a rough coverage estimate from three questions\n" +
		"- detailed: an obligations-based coverage estimate\n" +
		"- portfolio: a retirement savings gap check"
}

func isExit(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, marker := range exitMarkers {
		if lower == marker || strings.HasPrefix(lower, marker+" ") {
			return true
		}
	}
	return false
}

func isSkip(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, marker := range skipMarkers {
		if lower == marker {
			return true
		}
	}
	return false
}

func firstUnansweredRequired(cs *store.CalculatorSession) *store.CalcQuestion {
	for i := range cs.Questions {
		q := &cs.Questions[i]
		if q.Required {
			if _, ok := cs.Answers[q.ID]; !ok {
				return q
			}
		}
	}
	return nil
}

func firstUnansweredOptional(cs *store.CalculatorSession) *store.CalcQuestion {
	for i := range cs.Questions {
		q := &cs.Questions[i]
		if !q.Required {
			if _, ok := cs.Answers[q.ID]; !ok {
				return q
			}
		}
	}
	return nil
}

func indexOf(cs *store.CalculatorSession, id string) int {
	for i, q := range cs.Questions {
		if q.ID == id {
			return i
		}
	}
	return len(cs.Questions)
}
