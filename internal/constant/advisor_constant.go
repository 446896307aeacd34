package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// StandardDisclaimer is attached to every advisory answer.
	StandardDisclaimer = "This information is educational and not a substitute for advice from a licensed financial professional."

	// InsufficientInformationAnswer is the fixed response when retrieval
	// produced zero documents. Quality is pinned at 0.5 for this answer.
	InsufficientInformationAnswer = "I don't have enough information in my knowledge base to answer that reliably. Could you rephrase the question, or ask about a related topic such as term life insurance, whole life insurance, or retirement planning?"

	// GenericApology is the absolute last resort when the whole turn failed.
	GenericApology = "I'm sorry, something went wrong while preparing your answer. Please try again."

	// SourcesHeader marks the attribution segment appended to retrieval answers.
	// Compliance rewrites must preserve this segment verbatim.
	SourcesHeader = "Sources:"

	// CurrentInfoHeader separates web-search supplements from knowledge-base prose.
	CurrentInfoHeader = "Current information:"
)
