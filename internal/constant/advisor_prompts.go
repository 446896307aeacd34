package constant

// IntentClassificationPrompt expects: conversation context block, user message.
const IntentClassificationPrompt = `<system>
You are an intent analyzer for a financial guidance assistant. Your ONLY job is to classify what the user wants. You do NOT answer questions.
</system>

<conversation_context>
%s
</conversation_context>

<user_message>
%s
</user_message>

<categories>
CALCULATION: user wants a number computed (coverage amount, premium estimate, retirement gap). Markers: "calculate", "how much do I need", "estimate".
EDUCATION: user wants a concept explained. Markers: "what is", "explain", "how does X work".
COMPARISON: user wants two or more products/options compared.
SCENARIO: user describes a life situation and asks what applies ("I just had a baby...", "if I retire at 55...").
RECAP: user asks about the conversation itself ("what did we discuss", "summarize").
GENERAL_ADVICE: anything else.
</categories>

<output_format>
Respond with ONLY valid JSON:
{
  "category": "CALCULATION|EDUCATION|COMPARISON|SCENARIO|RECAP|GENERAL_ADVICE",
  "goal": "one short sentence describing what the user wants",
  "calculator_hint": "none|quick|detailed|portfolio",
  "confidence": 0.95,
  "needs_external_search": false,
  "needs_calculator_selection": false
}
Set needs_external_search true ONLY when the answer depends on current rates, news or regulation changes.
Set needs_calculator_selection true when the user wants a calculation but it is unclear which calculator fits.
</output_format>`

// QueryExpansionPrompt expects: the original query.
const QueryExpansionPrompt = `Rewrite the following question as 4 semantically related search queries that keep the SAME intent (no topic drift). One query per line, no numbering, no commentary.

Question: %s`

// QualityRatingPrompt expects: the question, the documents block, the answer.
const QualityRatingPrompt = `Rate how well the answer below addresses the question, given only the reference material. Respond with ONLY a number between 0 and 1.

Question: %s

Reference material:
%s

Answer:
%s`

// ComplianceReviewPrompt expects: the draft answer.
const ComplianceReviewPrompt = `You review answers from a financial guidance assistant for compliance. Rewrite the answer below ONLY if it makes guarantees, promises returns, or gives directive personal advice ("you should buy X"). Soften such statements into educational language. Keep everything else, including any "Sources:" section, exactly as written.

Respond with ONLY valid JSON:
{"answer": "<the reviewed answer>", "score": 0.9}

Draft answer:
%s`

// AnswerParsePrompt expects: the question prompt, the expected type description, the user reply.
const AnswerParsePrompt = `A user was asked: "%s"
The answer must be %s.
The user replied: "%s"

Extract the answer value. Respond with ONLY the value itself (a bare number, option text, or yes/no), nothing else. If no value can be extracted respond with UNPARSEABLE.`
