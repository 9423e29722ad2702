package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "learnora",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI text generation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnora",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of AI text generation failures",
	}, []string{"model", "reason"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements TextGenerator against the OpenAI chat
// completion API. JSON mode keeps responses machine-readable; ParseArray
// does the rest.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/learnora/learnora-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// GenerateArray sends the request to OpenAI and parses the response into the
// expected number of JSON items.
func (g *OpenAIGenerator) GenerateArray(parent context.Context, req GenerationRequest) ([]json.RawMessage, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate_array", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("items", req.ItemCount),
	))
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = g.cfg.Temperature
	}

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.Instructions,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		return nil, g.fail(span, "transport", fmt.Errorf("openai generate: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, g.fail(span, "empty", ErrEmptyCompletion)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, g.fail(span, "content_filter", fmt.Errorf("%w: model=%s", ErrContentBlocked, g.cfg.Model))
	}

	items, err := ParseArray(strings.TrimSpace(choice.Message.Content), req.ItemCount)
	if err != nil {
		return nil, g.fail(span, "parse", err)
	}

	g.logger.Debug().
		Str("model", g.cfg.Model).
		Int("items", len(items)).
		Dur("duration", duration).
		Msg("generation completed")

	return items, nil
}

func (g *OpenAIGenerator) fail(span trace.Span, reason string, err error) error {
	aiFailures.WithLabelValues(g.cfg.Model, reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
