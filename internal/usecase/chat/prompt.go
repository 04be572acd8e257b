package chat

import (
	"fmt"
	"strings"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

// buildSystemPrompt fixes the assistant's behavior: answer only in the
// target language, resolve references through HISTORY, ground document
// questions in CONTEXT, and admit not knowing instead of guessing.
func buildSystemPrompt(language string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a helpful %s academic assistant. Always answer in %s.\n", language, language)
	sb.WriteString("Use the HISTORY section to resolve pronouns and references in the question.\n")
	sb.WriteString("When a CONTEXT section is present, answer document-related questions using it.\n")
	fmt.Fprintf(&sb, "If the answer cannot be determined, say so explicitly in %s.", language)
	return sb.String()
}

// buildUserPrompt serializes the windowed history (role-labeled, in
// order), an optional CONTEXT section, and the question.
func buildUserPrompt(query, context string, history []entity.Turn) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString("HISTORY:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
		sb.WriteString("\n")
	}

	if context != "" {
		sb.WriteString("CONTEXT:\n")
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}

	sb.WriteString("QUESTION:\n")
	sb.WriteString(query)

	return sb.String()
}
