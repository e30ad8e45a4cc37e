package persona

import "regexp"

// FlaggedWords are replaced with "significant" in every reply.
var FlaggedWords = []string{"exciting", "amazing", "awesome", "fantastic", "incredible"}

var (
	exclamationRegex = regexp.MustCompile(`!+`)
	enthusiasmRegex  = regexp.MustCompile(`(?i)exciting|amazing|awesome|fantastic|incredible`)
)

// Filter flattens a reply into Mori's register: each run of exclamation
// marks becomes one period and enthusiastic adjectives become "significant".
// Matching is by substring, so "Amazingly" becomes "significantly".
// Filter is idempotent.
func Filter(reply string) string {
	reply = exclamationRegex.ReplaceAllString(reply, ".")
	reply = enthusiasmRegex.ReplaceAllString(reply, "significant")
	return reply
}
