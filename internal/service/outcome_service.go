package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
)

const outcomeBufferSize = 16

// OutcomePublisher emits structured outcome events. Publishing is
// fire-and-forget: failures are logged and never fail the originating
// operation.
type OutcomePublisher interface {
	Publish(ctx context.Context, event dto.OutcomeEvent)
}

// OutcomeService fans outcome events out to external transports and to
// in-process subscribers backing the live feed.
type OutcomeService interface {
	OutcomePublisher
	Subscribe() (<-chan dto.OutcomeEvent, func())
}

type outcomeService struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	broker      *outcomeBroker
	nodeID      string
	now         func() time.Time
}

type outcomeBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.OutcomeEvent]struct{}
}

// NewOutcomeService constructs the outcome sink. Both transports are
// optional; a nil client simply skips that fanout.
func NewOutcomeService(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) OutcomeService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":outcomes"
		subject = channelBase + ".outcomes"
	}

	return &outcomeService{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "outcome_service").Logger(),
		broker:      &outcomeBroker{subscribers: make(map[chan dto.OutcomeEvent]struct{})},
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

func (s *outcomeService) Publish(ctx context.Context, event dto.OutcomeEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = s.now().UTC()
	}

	s.broker.broadcast(event)

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode outcome event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		err := s.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: s.redisStream,
			Values: map[string]interface{}{"node": s.nodeID, "event": payload},
		}).Err()
		if err != nil {
			s.logger.Warn().Err(err).Str("stream", s.redisStream).Msg("failed to publish outcome to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish outcome to nats")
		}
	}
}

// Subscribe registers an in-process listener and returns its channel plus a
// cancel function. Slow listeners drop events instead of blocking publishers.
func (s *outcomeService) Subscribe() (<-chan dto.OutcomeEvent, func()) {
	channel := make(chan dto.OutcomeEvent, outcomeBufferSize)

	s.broker.mu.Lock()
	s.broker.subscribers[channel] = struct{}{}
	s.broker.mu.Unlock()

	cancel := func() {
		s.broker.mu.Lock()
		if _, ok := s.broker.subscribers[channel]; ok {
			delete(s.broker.subscribers, channel)
			close(channel)
		}
		s.broker.mu.Unlock()
	}

	return channel, cancel
}

func (b *outcomeBroker) broadcast(event dto.OutcomeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
}
