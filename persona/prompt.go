package persona

import "strings"

// BuildPrompt embeds the utterance between the persona directive and the
// length constraint. The utterance is passed through untouched: no escaping,
// no trimming, no length cap.
//
// notes, when non-empty, is appended as a "Mountain notes:" block the model
// may draw on.
func BuildPrompt(utterance, notes string) string {
	var b strings.Builder
	b.Grow(len(Directive) + len(utterance) + len(Constraint) + len(notes) + 32)

	b.WriteString(Directive)
	b.WriteString("\n\nUser: ")
	b.WriteString(utterance)
	b.WriteString("\n\n")
	b.WriteString(Constraint)

	if notes != "" {
		b.WriteString("\n\nMountain notes:\n")
		b.WriteString(notes)
	}

	return b.String()
}
