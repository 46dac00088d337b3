// Package validator checks inbound session requests against the
// configured limits before they reach the usecase layer.
package validator

import (
	"fmt"

	"github.com/chatfield/chatfield-go/internal/config"
	"github.com/chatfield/chatfield-go/internal/entity"
)

type Validator struct {
	cfg config.ValidationConfig
}

func New(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateThreadID checks a caller-supplied thread ID: non-empty,
// within the length limit, made of URL- and key-safe characters.
func (v *Validator) ValidateThreadID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: thread_id", entity.ErrMissingField)
	}
	if len(id) > v.cfg.MaxThreadIDLength {
		return fmt.Errorf("%w: thread_id is %d characters (max %d)", entity.ErrInvalidParameter, len(id), v.cfg.MaxThreadIDLength)
	}
	for _, r := range id {
		if !threadIDChar(r) {
			return fmt.Errorf("%w: thread_id contains %q", entity.ErrInvalidParameter, r)
		}
	}
	return nil
}

func threadIDChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == ':':
		return true
	}
	return false
}
