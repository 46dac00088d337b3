// Package keyboard builds the bot's inline keyboards and the callback
// data they carry.
package keyboard

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ActionExport is the callback action for record downloads; its value
// is the export format.
const ActionExport = "export"

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}

// ExportKeyboard offers the record download formats.
func ExportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Markdown", EncodeCallback(ActionExport, "md")),
			tgbotapi.NewInlineKeyboardButtonData("PDF", EncodeCallback(ActionExport, "pdf")),
			tgbotapi.NewInlineKeyboardButtonData("DOCX", EncodeCallback(ActionExport, "docx")),
		),
	)
}
