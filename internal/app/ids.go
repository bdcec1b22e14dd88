package app

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

func newUUID() string {
	return uuid.NewString()
}

// newReference returns a short guest-facing booking code such as "BK3F9A0C21".
func newReference() string {
	id := uuid.New()
	return "BK" + strings.ToUpper(hex.EncodeToString(id[:4]))
}
