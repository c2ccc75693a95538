package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/noah-isme/gema-grader/internal/grading"
)

// VerdictEvent is broadcast after every successful grading.
type VerdictEvent struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Modality      string    `json:"modality"`
	Correct       bool      `json:"correct"`
	Stage         string    `json:"stage"`
	GradedAt      time.Time `json:"graded_at"`
}

// NewVerdictEvent stamps a verdict with a fresh event identifier.
func NewVerdictEvent(correlationID string, verdict grading.Verdict, gradedAt time.Time) VerdictEvent {
	return VerdictEvent{
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Modality:      string(verdict.Modality),
		Correct:       verdict.Correct,
		Stage:         string(verdict.Stage),
		GradedAt:      gradedAt.UTC(),
	}
}

// VerdictPublisher delivers verdict events to downstream consumers.
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, event VerdictEvent) error
}

type natsVerdictPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSVerdictPublisher publishes verdict events as JSON on subject. It returns nil when conn is nil.
func NewNATSVerdictPublisher(conn *nats.Conn, subject string) VerdictPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &natsVerdictPublisher{conn: conn, subject: subject}
}

func (p *natsVerdictPublisher) PublishVerdict(_ context.Context, event VerdictEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish verdict to %s: %w", p.subject, err)
	}
	return nil
}
