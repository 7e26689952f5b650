package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// LogSubmissions consumes SubmittedEvents from topic and writes one log line
// per event. It serves the in-process channel mode, where nothing else reads
// the topic. Consumption stops when ctx is done or the subscriber closes.
func LogSubmissions(ctx context.Context, sub message.Subscriber, topic string, logger *zap.Logger) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	go func() {
		for msg := range messages {
			var event SubmittedEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Warn("undecodable submission event", zap.String("message_id", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}
			logger.Info("submission event",
				zap.String("event_id", event.ID),
				zap.String("submission_id", event.SubmissionID),
				zap.String("assessment_id", event.AssessmentID),
				zap.String("learner_id", event.LearnerID),
				zap.Int("score", event.Result.Score),
				zap.Bool("passed", event.Result.Passed),
			)
			msg.Ack()
		}
	}()
	return nil
}
