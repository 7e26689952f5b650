package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/infra/memory"
)

func TestLogSubmissionsConsumesChannelEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, logs := observer.New(zapcore.InfoLevel)
	pubsub := NewChannelPubSub(watermill.NopLogger{})
	defer pubsub.Close()
	require.NoError(t, LogSubmissions(ctx, pubsub, "submissions", zap.New(core)))

	sink := NewPublishingSink(memory.NewSubmissionLog(), pubsub, "submissions", zap.NewNop())
	_, err := sink.Submit(ctx, domain.Submission{
		SessionID:    "s1",
		AssessmentID: "a1",
		LearnerID:    "learner-1",
		Result:       domain.Result{Score: 3, Passed: true},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("submission event").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	fields := logs.FilterMessage("submission event").All()[0].ContextMap()
	assert.Equal(t, "learner-1", fields["learner_id"])
	assert.Equal(t, int64(3), fields["score"])
}
