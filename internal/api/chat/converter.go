package chat

import (
	"fmt"

	"github.com/mvahidi/copilot-backend/internal/entity"
)

// validateHistory rejects turns with roles the prompt builder cannot
// label. Unknown roles would silently corrupt the HISTORY section.
func validateHistory(history []entity.Turn) error {
	for i, turn := range history {
		if turn.Role != entity.RoleUser && turn.Role != entity.RoleAssistant {
			return fmt.Errorf("%w: history[%d] role %q", entity.ErrInvalidRole, i, turn.Role)
		}
	}
	return nil
}

// toChatResponse converts an answer string to the response DTO
func toChatResponse(answer string) entity.ChatResponse {
	return entity.ChatResponse{Answer: answer}
}
