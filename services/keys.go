package services

import (
	"strings"

	"github.com/google/uuid"
)

// KeyGenerator produces opaque external identifiers.
type KeyGenerator interface {
	NewKey() string
}

type UUIDKeyGenerator struct{}

func (UUIDKeyGenerator) NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
