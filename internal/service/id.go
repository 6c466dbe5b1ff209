package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID builds a prefixed identifier such as "pay_1f6d..." backed by a UUID,
// so identifiers stay collision-resistant under concurrent creation.
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
