package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/learnora/learnora-api/internal/observability"
)

// PathGeneratedEvent describes one completed (re)generation.
type PathGeneratedEvent struct {
	StudentID         uint      `json:"student_id"`
	Source            string    `json:"source"`
	Narrated          bool      `json:"narrated"`
	TotalCourses      int       `json:"total_courses"`
	TotalPhases       int       `json:"total_phases"`
	RegenerationCount int       `json:"regeneration_count"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// PathEventPublisher fans out path lifecycle events to the other API nodes
// over Redis pub/sub and NATS.
type PathEventPublisher interface {
	PathGenerated(ctx context.Context, event PathGeneratedEvent)
	Start(ctx context.Context)
}

type pathEventEnvelope struct {
	Node   string             `json:"node"`
	Event  PathGeneratedEvent `json:"event"`
	SentAt time.Time          `json:"sent_at"`
}

type pathEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

// NewPathEventPublisher constructs the fan-out publisher. Either transport
// may be nil; publishing degrades to whatever is connected.
func NewPathEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) PathEventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":paths"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".paths"
	}

	return &pathEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "path_events").Logger(),
		nodeID:       uuid.NewString(),
	}
}

// Start launches the cross-node consumers. They only observe: regenerations
// from other nodes are logged and counted, state lives in the database.
func (p *pathEventPublisher) Start(ctx context.Context) {
	if p.redis != nil && p.redisChannel != "" {
		go p.consumeRedis(ctx)
	}
	if p.nats != nil && p.natsSubject != "" {
		go p.consumeNATS(ctx)
	}
}

func (p *pathEventPublisher) PathGenerated(ctx context.Context, event PathGeneratedEvent) {
	envelope := pathEventEnvelope{
		Node:   p.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode path event")
		return
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to publish path event to redis")
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Msg("failed to publish path event to nats")
		}
	}

	observability.PathEvents().WithLabelValues("published").Inc()
}

func (p *pathEventPublisher) consumeRedis(ctx context.Context) {
	pubsub := p.redis.Subscribe(ctx, p.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Error().Err(err).Msg("path event redis subscription closed")
			return
		}
		p.handleEvent([]byte(msg.Payload))
	}
}

func (p *pathEventPublisher) consumeNATS(ctx context.Context) {
	sub, err := p.nats.QueueSubscribe(p.natsSubject, "learnora-paths", func(msg *nats.Msg) {
		p.handleEvent(msg.Data)
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to subscribe to nats path subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to drain path nats subscription")
		}
	}()
}

func (p *pathEventPublisher) handleEvent(payload []byte) {
	var envelope pathEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		p.logger.Warn().Err(err).Msg("invalid path event payload")
		return
	}

	if envelope.Node == p.nodeID {
		return
	}

	observability.PathEvents().WithLabelValues("received").Inc()
	p.logger.Info().
		Uint("student_id", envelope.Event.StudentID).
		Str("source", envelope.Event.Source).
		Int("regeneration_count", envelope.Event.RegenerationCount).
		Msg("learning path regenerated on another node")
}
