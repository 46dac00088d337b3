package keyboard

import "testing"

func TestCallbackRoundTrip(t *testing.T) {
	data := EncodeCallback(ActionExport, "pdf")
	if data != "export:pdf" {
		t.Fatalf("encoded = %q", data)
	}

	parsed, err := ParseCallback(data)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if parsed.Action != ActionExport || parsed.Value != "pdf" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseCallbackRejectsBareData(t *testing.T) {
	if _, err := ParseCallback("nonsense"); err == nil {
		t.Fatal("bare data should not parse")
	}
}

func TestExportKeyboardFormats(t *testing.T) {
	kb := ExportKeyboard()
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 3 {
		t.Fatalf("keyboard layout = %+v", kb.InlineKeyboard)
	}
	want := []string{"export:md", "export:pdf", "export:docx"}
	for i, btn := range kb.InlineKeyboard[0] {
		if btn.CallbackData == nil || *btn.CallbackData != want[i] {
			t.Errorf("button %d data = %v, want %s", i, btn.CallbackData, want[i])
		}
	}
}
