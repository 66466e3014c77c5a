package text

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single provider call when no timeout is configured.
const DefaultTimeout = 3 * time.Second

var (
	ErrMissingAPIKey = errors.New("generator API key is not configured")
	ErrMissingURL    = errors.New("generator URL is not configured")
	ErrEmptyPassage  = errors.New("generator returned an empty passage")
)

// Provider is a one-shot source of typing passages. Implementations apply
// their own timeout and return a terminal error on failure; callers never
// retry.
type Provider interface {
	Passage(ctx context.Context) (string, error)
}
