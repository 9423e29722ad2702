package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// GenerationRequest describes a single structured-array generation call.
// ItemCount is the number of array entries the caller expects back.
type GenerationRequest struct {
	Instructions string
	Prompt       string
	ItemCount    int
	Temperature  float32
	MaxTokens    int
}

// TextGenerator is the port to the generative-text collaborator. Responses
// are arrays of raw JSON objects, one per requested item, in request order.
// Implementations report every failure mode (timeout, non-success status,
// content block, malformed output) as an error; callers decide whether to
// fall back.
type TextGenerator interface {
	GenerateArray(ctx context.Context, req GenerationRequest) ([]json.RawMessage, error)
}

// ErrContentBlocked indicates the provider refused the request on safety
// grounds. Retrying the same prompt will not help.
var ErrContentBlocked = errors.New("generation blocked by content filter")

// ErrEmptyCompletion indicates the provider returned no usable choices.
var ErrEmptyCompletion = errors.New("no completion choices returned")
