package store

// Calculator dialogue states. Transitions move forward only, except
// error -> active on retry and active -> exited on explicit user exit.
const (
	CalcStateSelecting = "SELECTING"
	CalcStateActive    = "ACTIVE"
	CalcStateCompleted = "COMPLETED"
	CalcStateError     = "ERROR"
	CalcStateExited    = "EXITED"
)

// Calculator variants the user may select.
const (
	CalcVariantQuick     = "quick"
	CalcVariantDetailed  = "detailed"
	CalcVariantPortfolio = "portfolio"
)

// Question answer types.
const (
	AnswerNumber   = "number"
	AnswerCurrency = "currency"
	AnswerSelect   = "select"
	AnswerBool     = "bool"
)

// CalcQuestion is one entry in a calculator questionnaire.
type CalcQuestion struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Min      float64  `json:"min,omitempty"`
	Max      float64  `json:"max,omitempty"`
	Options  []string `json:"options,omitempty"` // for select questions
	Example  string   `json:"example"`           // shown on validation failure
}

// CalculatorSession is the finite-state multi-question dialogue embedded
// in the conversation. Index never exceeds the question count.
type CalculatorSession struct {
	Variant   string                 `json:"variant"`
	State     string                 `json:"state"`
	Questions []CalcQuestion         `json:"questions"`
	Index     int                    `json:"index"`
	Answers   map[string]interface{} `json:"answers"`

	// Skipped marks optional questions the user declined, so they are
	// not re-asked unless completion requires one of them.
	Skipped map[string]bool `json:"skipped,omitempty"`

	// LastAccepted guards against double submission of the same answer:
	// an identical resend of the input that just advanced the dialogue
	// re-prompts instead of advancing twice.
	LastAccepted string `json:"last_accepted,omitempty"`

	// Result holds the recommended amount once the dialogue completes.
	Result float64 `json:"result,omitempty"`
}

// CurrentQuestion returns the pending question, or nil past the end.
func (cs *CalculatorSession) CurrentQuestion() *CalcQuestion {
	if cs.Index < 0 || cs.Index >= len(cs.Questions) {
		return nil
	}
	return &cs.Questions[cs.Index]
}

// AnsweredCount returns how many questions of the given kind are answered.
func (cs *CalculatorSession) AnsweredCount(required bool) int {
	n := 0
	for _, q := range cs.Questions {
		if q.Required != required {
			continue
		}
		if _, ok := cs.Answers[q.ID]; ok {
			n++
		}
	}
	return n
}
