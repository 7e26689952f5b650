package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/domain"
)

// EventSubmitted is the type of the event emitted for each stored submission.
const EventSubmitted = "assessment.submitted"

// SubmittedEvent announces a stored submission to downstream consumers
// (gradebooks, notifications).
type SubmittedEvent struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	SubmissionID string        `json:"submissionId"`
	SessionID    string        `json:"sessionId"`
	AssessmentID string        `json:"assessmentId"`
	LearnerID    string        `json:"learnerId"`
	Result       domain.Result `json:"result"`
	SubmittedAt  time.Time     `json:"submittedAt"`
}

// NewKafkaPublisher creates a watermill publisher writing to Kafka.
func NewKafkaPublisher(brokers []string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return pub, nil
}

// NewChannelPubSub creates an in-process pub/sub, used when no broker is configured.
func NewChannelPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
}

// PublishingSink forwards submissions to the wrapped sink and, once stored,
// publishes a SubmittedEvent. Publish failures are logged; the submission
// is already acknowledged at that point.
type PublishingSink struct {
	next      app.SubmissionSink
	publisher message.Publisher
	topic     string
	logger    *zap.Logger
}

func NewPublishingSink(next app.SubmissionSink, publisher message.Publisher, topic string, logger *zap.Logger) *PublishingSink {
	return &PublishingSink{next: next, publisher: publisher, topic: topic, logger: logger}
}

func (s *PublishingSink) Submit(ctx context.Context, sub domain.Submission) (domain.Ack, error) {
	ack, err := s.next.Submit(ctx, sub)
	if err != nil {
		return ack, err
	}

	event := SubmittedEvent{
		ID:           uuid.NewString(),
		Type:         EventSubmitted,
		SubmissionID: ack.SubmissionID,
		SessionID:    sub.SessionID,
		AssessmentID: sub.AssessmentID,
		LearnerID:    sub.LearnerID,
		Result:       sub.Result,
		SubmittedAt:  sub.SubmittedAt,
	}
	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn("publish submission event",
			zap.String("event_id", event.ID),
			zap.String("submission_id", ack.SubmissionID),
			zap.Error(err),
		)
		return ack, nil
	}
	s.logger.Debug("published submission event",
		zap.String("event_id", event.ID),
		zap.String("topic", s.topic),
	)
	return ack, nil
}

func (s *PublishingSink) publish(ctx context.Context, event SubmittedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("assessment_id", event.AssessmentID)
	msg.Metadata.Set("timestamp", event.SubmittedAt.Format(time.RFC3339))
	return s.publisher.Publish(s.topic, msg)
}
