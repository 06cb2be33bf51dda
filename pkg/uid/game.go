package uid

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateGameID returns a random 32 character hex id
func GenerateGameID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func IsGameID(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
