package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newCode builds short human-readable codes like "PED-3F2A9C71".
func newCode(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))

	return fmt.Sprintf("%s-%s", prefix, id[:8])
}
