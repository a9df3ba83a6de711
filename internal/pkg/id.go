package pkg

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateSessionID returns a random (v4) UUID string.
func GenerateSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	return id.String(), nil
}
