// Package analyzer is the boundary to the external multi-agent analysis
// pipeline. The pipeline itself is opaque: given a stored file path plus an
// optional keyword and free-text query, it eventually returns a textual
// result or fails.
package analyzer

import (
	"context"
	"errors"
)

// Input is everything the pipeline needs for one run.
type Input struct {
	DocumentPath string
	Keyword      string
	Query        string
}

// Output is the pipeline's textual result plus any captured execution log.
type Output struct {
	Summary string
	Log     string
}

// Client abstracts the analysis pipeline.
type Client interface {
	Analyze(ctx context.Context, input Input) (Output, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("analyzer not configured")

// Placeholder is a stub implementation until a provider is configured.
type Placeholder struct{}

// Analyze returns ErrNotConfigured.
func (Placeholder) Analyze(ctx context.Context, input Input) (Output, error) {
	_ = ctx
	_ = input
	return Output{}, ErrNotConfigured
}
