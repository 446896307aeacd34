package store

// RouteKind is the closed set of per-turn routing outcomes.
// Exactly one is produced per turn.
type RouteKind string

const (
	RouteRetrievalAnswer    RouteKind = "RETRIEVAL_ANSWER"
	RouteCalculatorContinue RouteKind = "CALCULATOR_CONTINUE"
	RouteCalculatorSelect   RouteKind = "CALCULATOR_SELECT"
	RouteCalculatorStart    RouteKind = "CALCULATOR_START"
	RouteToolHandoff        RouteKind = "TOOL_HANDOFF"
	RoutePlainAnswer        RouteKind = "PLAIN_ANSWER"
	RouteRecap              RouteKind = "CONVERSATION_RECAP"
)

// RoutingDecision is the router's verdict for a single turn.
type RoutingDecision struct {
	Kind       RouteKind         `json:"kind"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Tool       string            `json:"tool,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
