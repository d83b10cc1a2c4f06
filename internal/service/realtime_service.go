package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// liveChannel is the Redis channel registration changes are relayed on, so
// that changes made by the worker reach subscribers of the API process
const liveChannel = "eventdesk:live"

// Subscriber represents a connected client
type Subscriber struct {
	ID      string
	EventID uuid.UUID
	Channel chan *domain.RegistrationChange
	Done    chan struct{}
}

// RealtimeService streams registration changes to live subscribers of an event
type RealtimeService struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	redis       redis.UniversalClient
	logger      *zap.Logger
}

// NewRealtimeService creates a new realtime service. With a nil Redis client
// changes are only delivered inside this process.
func NewRealtimeService(logger *zap.Logger, client redis.UniversalClient) *RealtimeService {
	return &RealtimeService{
		subscribers: make(map[string]*Subscriber),
		redis:       client,
		logger:      logger.Named("realtime"),
	}
}

// Subscribe creates a new subscription for an event
func (s *RealtimeService) Subscribe(ctx context.Context, eventID uuid.UUID) *Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscriber{
		ID:      uuid.New().String(),
		EventID: eventID,
		Channel: make(chan *domain.RegistrationChange, 100),
		Done:    make(chan struct{}),
	}

	s.subscribers[sub.ID] = sub

	go func() {
		select {
		case <-ctx.Done():
			s.Unsubscribe(sub.ID)
		case <-sub.Done:
		}
	}()

	return sub
}

// Unsubscribe removes a subscription
func (s *RealtimeService) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subscribers[id]; ok {
		close(sub.Done)
		close(sub.Channel)
		delete(s.subscribers, id)
	}
}

// Publish announces a registration change
func (s *RealtimeService) Publish(ctx context.Context, changeType string, reg *domain.Registration) {
	change := &domain.RegistrationChange{
		Type:           changeType,
		EventID:        reg.EventID,
		RegistrationID: reg.ID,
		Status:         reg.Status,
		PaymentStatus:  reg.PaymentStatus,
		At:             time.Now().UTC(),
	}

	if s.redis == nil {
		s.deliver(change)
		return
	}

	data, err := json.Marshal(change)
	if err != nil {
		s.logger.Error("failed to marshal registration change", zap.Error(err))
		return
	}
	if err := s.redis.Publish(ctx, liveChannel, data).Err(); err != nil {
		s.logger.Warn("failed to relay registration change, delivering locally", zap.Error(err))
		s.deliver(change)
	}
}

// Run relays changes published by any process to local subscribers until
// ctx is cancelled. It is a no-op without Redis.
func (s *RealtimeService) Run(ctx context.Context) error {
	if s.redis == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := s.redis.Subscribe(ctx, liveChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change domain.RegistrationChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.logger.Warn("dropping malformed registration change", zap.Error(err))
				continue
			}
			s.deliver(&change)
		}
	}
}

func (s *RealtimeService) deliver(change *domain.RegistrationChange) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.EventID == change.EventID {
			select {
			case sub.Channel <- change:
			default:
				// Channel is full, skip this subscriber
			}
		}
	}
}

// GetSubscriberCount returns the number of active subscribers for an event
func (s *RealtimeService) GetSubscriberCount(eventID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.subscribers {
		if sub.EventID == eventID {
			count++
		}
	}
	return count
}

// FormatSSE formats a change as a Server-Sent Events frame
func FormatSSE(change *domain.RegistrationChange) ([]byte, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}

	frame := []byte("event: " + change.Type + "\ndata: ")
	frame = append(frame, data...)
	return append(frame, '\n', '\n'), nil
}
