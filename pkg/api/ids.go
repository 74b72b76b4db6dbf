package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID builds the synthetic record ids used across collections: a base36
// millisecond timestamp plus a short random suffix. Collisions are improbable,
// not impossible; nothing stronger is needed at this scale.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + randomSuffix(8)
}

// NewInviteCode returns the short shareable token embedded in invite links.
func NewInviteCode() string {
	return randomSuffix(8)
}

func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
