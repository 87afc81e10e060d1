package provider

import "strings"

// Prompt variant names.
const (
	PromptGeneric       = "generic"
	PromptFalsePositive = "false-positive"

	// DefaultPrompt is the variant used when none is selected.
	DefaultPrompt = PromptGeneric
)

// Prompts maps variant names to their templates. Each template contains
// a {codes} placeholder filled by BuildPrompt.
var Prompts = map[string]string{
	PromptGeneric: `For each 3-letter code in this list, identify ONLY well-established, factual meanings outside of aviation. Do NOT invent or guess meanings. Only include meanings that are widely recognized and verifiable.

Categories:
- English dictionary words (e.g., BYE = "bye", ANT = "ant", MEN = "men")
- Officially recognized abbreviations and acronyms (e.g., API = Application Programming Interface, CPU = Central Processing Unit)

Codes: {codes}

Return a JSON object with an entry for EVERY code listed above, mapping each code to an object with:
- "word": English dictionary word if the code exactly spells one (case-insensitive), else null
- "abbreviations": list of strings like "domain: meaning" (only widely known, established abbreviations), or an empty list
- "notes": null (do not add notes or commentary)

Strict rules:
- Do NOT make up or speculate about meanings
- Do NOT include obscure or niche abbreviations
- A code with no real, verifiable meaning still gets an entry: null word and an empty abbreviations list
- Never omit a code from the response
Return valid JSON only, no markdown or explanation.`,

	PromptFalsePositive: `Context: We are building a smartphone feature that detects IATA airport codes in emails and messages to offer travel hints (e.g., showing flight info when "JFK" appears). The problem is false positives: many 3-letter airport codes are also common English words (e.g., "BYE", "AND", "THE") or widely used abbreviations (e.g., "API", "CPU", "MEM"). We need to catalog these collisions so our model can distinguish between airport references and everyday language.

For each 3-letter code below, identify ONLY well-established, factual non-aviation meanings. These are the meanings that would cause a false positive if someone typed them in a message and our system mistakenly treated them as an airport code.

Categories to check:
- Common English words (e.g., BYE = "bye", ANT = "ant", MEN = "men", THE = "the")
- Widely used abbreviations and acronyms in technology, medicine, business, education, or everyday life (e.g., API = Application Programming Interface, CPU = Central Processing Unit, MBA = Master of Business Administration)
- Common slang, texting shorthand, or internet abbreviations (e.g., LOL, BRB, OMG)
- Country/currency/unit codes that people use in messages (e.g., USD, GBP, KGS)

Codes: {codes}

Return a JSON object with an entry for EVERY code listed above, mapping each code to an object with:
- "word": English dictionary word if the code exactly spells one (case-insensitive), else null
- "abbreviations": list of strings like "domain: meaning" (only widely known, established meanings that a regular person might type in a message or email), or an empty list
- "notes": null (do not add notes or commentary)

Strict rules:
- Do NOT make up or speculate about meanings
- Do NOT include obscure, niche, or domain-specific jargon that ordinary people would never use in messages
- A code with no well-known non-airport meaning still gets an entry: null word and an empty abbreviations list
- Never omit a code from the response
- Think about it from the perspective of: "Would a normal person type this in an email or text message meaning something other than an airport?"
Return valid JSON only, no markdown or explanation.`,
}

// PromptNames returns the available variant names in stable order.
func PromptNames() []string {
	return []string{PromptGeneric, PromptFalsePositive}
}

// BuildPrompt fills the {codes} placeholder with a comma-separated list.
func BuildPrompt(template string, codes []string) string {
	return strings.ReplaceAll(template, "{codes}", strings.Join(codes, ", "))
}
