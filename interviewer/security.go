package interviewer

import (
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// SecurityMode controls how endpoint checks react to a base URL that
// would send conversation traffic to an official provider API. Client
// side deployments should use strict mode so an API key is never
// shipped to end users; server deployments default to disabled.
type SecurityMode string

const (
	SecurityDisabled SecurityMode = "disabled"
	SecurityWarn     SecurityMode = "warn"
	SecurityStrict   SecurityMode = "strict"
)

// ErrDangerousEndpoint is returned in strict mode when the configured
// base URL routes to an official provider API.
var ErrDangerousEndpoint = errors.New("dangerous endpoint")

var dangerousEndpoints = []string{
	"api.openai.com",
	"api.anthropic.com",
}

func (m SecurityMode) valid() bool {
	switch m {
	case SecurityDisabled, SecurityWarn, SecurityStrict:
		return true
	}
	return false
}

// CheckEndpoint classifies the configured base URL. An empty URL means
// the client defaults to the official endpoint, which is dangerous; a
// relative URL points at the deployment's own proxy, which is safe.
func CheckEndpoint(baseURL string, mode SecurityMode, logger *zap.Logger) error {
	onDangerous := func(message string) error {
		switch mode {
		case SecurityWarn:
			logger.Warn(message + ": your API key may be exposed to end users")
		case SecurityStrict:
			return fmt.Errorf("%w: %s: this may expose your API key to end users, use a backend proxy instead",
				ErrDangerousEndpoint, message)
		default:
			logger.Debug("endpoint check", zap.String("detail", message))
		}
		return nil
	}

	if baseURL == "" {
		return onDangerous("no explicit endpoint configured")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		// Relative URL, treated as safe.
		return nil
	}

	for _, endpoint := range dangerousEndpoints {
		if hostname == endpoint {
			return onDangerous("detected official API endpoint " + endpoint)
		}
	}

	logger.Info("safe endpoint", zap.String("hostname", hostname))
	return nil
}
