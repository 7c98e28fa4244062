package models

import "fmt"

// ProviderError marks a single adapter's failure (auth, network, malformed or
// incomplete payload). The aggregator logs it and advances to the next
// provider; adapters never retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err with the provider name.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}

// AllProvidersFailedError is raised when every enabled provider failed for one
// request. Surfaced to the caller as a hard failure; no partial data is
// synthesized.
type AllProvidersFailedError struct {
	Symbol   string
	Attempts int
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all %d providers failed for %s", e.Attempts, e.Symbol)
}
