package router

import (
	"log"
	"strings"

	"ai-advisor-be/pkg/store"
)

// Router selects exactly one answer strategy per turn. It is a pure
// decision table over the classified intent and session state; no I/O.
type Router struct {
	logger *log.Logger
}

// NewRouter creates a new routing decision table
func NewRouter(logger *log.Logger) *Router {
	return &Router{logger: logger}
}

var recapMarkers = []string{
	"what did we discuss",
	"what did we talk about",
	"summarize our conversation",
	"summarize this conversation",
	"recap",
}

var toolMarkers = []string{
	"analyze my policy document",
	"analyze my document",
	"review my uploaded",
	"read my uploaded",
}

// Decide resolves the route for one turn.
//
// Precedence: an active calculator dialogue always wins, regardless of
// the classified intent. A pending multi-turn dialogue must be completed
// or explicitly exited before topic switching.
func (r *Router) Decide(text string, intent store.IntentResult, convCtx store.ConversationContext, calcActive bool) store.RoutingDecision {
	decision := r.decide(text, intent, calcActive)
	r.logger.Printf("[ROUTER] Decision: %s (confidence: %.2f) - %s",
		decision.Kind, decision.Confidence, decision.Reasoning)
	return decision
}

func (r *Router) decide(text string, intent store.IntentResult, calcActive bool) store.RoutingDecision {
	// Rule 1: active calculator bypasses everything else
	if calcActive {
		return store.RoutingDecision{
			Kind:       store.RouteCalculatorContinue,
			Confidence: 1.0,
			Reasoning:  "calculator dialogue in progress; mid-dialogue messages are never reclassified",
		}
	}

	// Rule 2: calculation wanted but variant unclear
	if intent.NeedsCalculatorSelection {
		return store.RoutingDecision{
			Kind:       store.RouteCalculatorSelect,
			Confidence: intent.Confidence,
			Reasoning:  "calculation requested, calculator variant needs selection",
		}
	}

	// Rule 3: calculation intents never resolve to "no calculator"
	if intent.Category == store.CategoryCalculation {
		hint := intent.Hint
		if hint == store.HintNone {
			hint = store.HintQuick
		}
		return store.RoutingDecision{
			Kind:       store.RouteCalculatorStart,
			Confidence: intent.Confidence,
			Reasoning:  "calculation intent starts the " + string(hint) + " calculator",
			Metadata:   map[string]string{"calculator": string(hint)},
		}
	}

	// Rule 4: informational categories go through retrieval. The external
	// search flag is carried through unchanged so the decision is made
	// exactly once per turn.
	if intent.Category.IsInformational() {
		return store.RoutingDecision{
			Kind:       store.RouteRetrievalAnswer,
			Confidence: intent.Confidence,
			Reasoning:  "informational intent answered from the knowledge base",
			Metadata: map[string]string{
				"allow_external_search": boolString(intent.NeedsExternalSearch),
			},
		}
	}

	// Rule 5: recap phrasing bypasses retrieval entirely
	lower := strings.ToLower(text)
	if intent.Category == store.CategoryRecap || matchesAny(lower, recapMarkers) {
		return store.RoutingDecision{
			Kind:       store.RouteRecap,
			Confidence: maxFloat(intent.Confidence, 0.7),
			Reasoning:  "user asked about the conversation itself",
		}
	}

	// Document-analysis requests hand off to the extraction tool
	if matchesAny(lower, toolMarkers) {
		return store.RoutingDecision{
			Kind:       store.RouteToolHandoff,
			Confidence: 0.7,
			Reasoning:  "document analysis is handled by the upload pipeline",
			Tool:       "document-analyzer",
		}
	}

	// Rule 6: lowest-confidence fallback
	confidence := intent.Confidence
	if confidence > 0.5 {
		confidence = 0.5
	}
	return store.RoutingDecision{
		Kind:       store.RoutePlainAnswer,
		Confidence: confidence,
		Reasoning:  "no specialized strategy matched, answering from general knowledge",
	}
}

func matchesAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
