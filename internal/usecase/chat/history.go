package chat

import "github.com/mvahidi/copilot-backend/internal/entity"

// Window returns the last maxTurns turns in their original order.
// Shorter histories come back unchanged. Pure function; the caller keeps
// ownership of the slice backing array.
func Window(history []entity.Turn, maxTurns int) []entity.Turn {
	if maxTurns <= 0 {
		return nil
	}
	if len(history) <= maxTurns {
		return history
	}
	return history[len(history)-maxTurns:]
}
