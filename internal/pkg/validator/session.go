package validator

import (
	"fmt"

	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/chatfield/chatfield-go/internal/pkg/export"
)

// ValidateStartSession validates StartSessionRequest
func (v *Validator) ValidateStartSession(req *entity.StartSessionRequest) error {
	if req.ThreadID != nil {
		return v.ValidateThreadID(*req.ThreadID)
	}
	return nil
}

// ValidateChat validates ChatRequest
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if err := v.ValidateThreadID(req.ThreadID); err != nil {
		return err
	}
	if req.Message == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}
	if len(req.Message) > v.cfg.MaxMessageLength {
		return fmt.Errorf("%w: message is %d bytes (max %d)", entity.ErrInvalidParameter, len(req.Message), v.cfg.MaxMessageLength)
	}
	return nil
}

// ValidateEndSession validates EndSessionRequest
func (v *Validator) ValidateEndSession(req *entity.EndSessionRequest) error {
	return v.ValidateThreadID(req.ThreadID)
}

// ValidateExportFormat parses the requested export format.
func (v *Validator) ValidateExportFormat(format string) (export.Format, error) {
	switch export.Format(format) {
	case export.FormatMarkdown, export.FormatPDF, export.FormatDOCX:
		return export.Format(format), nil
	}
	return "", fmt.Errorf("%w: %q (want md, pdf or docx)", entity.ErrInvalidFormat, format)
}
