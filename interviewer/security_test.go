package interviewer

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestCheckEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		mode    SecurityMode
		wantErr bool
	}{
		{"no endpoint, disabled", "", SecurityDisabled, false},
		{"no endpoint, warn", "", SecurityWarn, false},
		{"no endpoint, strict", "", SecurityStrict, true},
		{"official openai, strict", "https://api.openai.com/v1", SecurityStrict, true},
		{"official anthropic, strict", "https://api.anthropic.com/v1", SecurityStrict, true},
		{"official openai, warn", "https://api.openai.com/v1", SecurityWarn, false},
		{"official openai, disabled", "https://api.openai.com/v1", SecurityDisabled, false},
		{"relative proxy, strict", "/llm/v1", SecurityStrict, false},
		{"private proxy, strict", "https://llm.internal.example.com/v1", SecurityStrict, false},
		{"subdomain lookalike, strict", "https://api.openai.com.evil.example/v1", SecurityStrict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEndpoint(tt.baseURL, tt.mode, zap.NewNop())
			if tt.wantErr {
				if !errors.Is(err, ErrDangerousEndpoint) {
					t.Fatalf("CheckEndpoint(%q, %s) = %v, want ErrDangerousEndpoint", tt.baseURL, tt.mode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckEndpoint(%q, %s) = %v, want nil", tt.baseURL, tt.mode, err)
			}
		})
	}
}

func TestCheckEndpointBadURL(t *testing.T) {
	err := CheckEndpoint("://missing-scheme", SecurityStrict, zap.NewNop())
	if err == nil {
		t.Fatal("expected parse error for malformed base URL")
	}
	if errors.Is(err, ErrDangerousEndpoint) {
		t.Fatalf("malformed URL misclassified as dangerous: %v", err)
	}
}

func TestSecurityModeValid(t *testing.T) {
	for _, m := range []SecurityMode{SecurityDisabled, SecurityWarn, SecurityStrict} {
		if !m.valid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	if SecurityMode("paranoid").valid() {
		t.Error("unknown mode accepted")
	}
}
