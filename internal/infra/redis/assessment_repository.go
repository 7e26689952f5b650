package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lms-assessment-service/internal/domain"
)

// AssessmentLoader fetches assessment content from a backing store (e.g. Postgres).
type AssessmentLoader interface {
	LoadAssessment(ctx context.Context, assessmentID string) (domain.Assessment, error)
}

// AssessmentRepository caches assessments in Redis as their JSON record and
// falls back to a loader on cache miss.
//
//	SET assessment:{id} {record json} EX ttl
type AssessmentRepository struct {
	client *redis.Client
	loader AssessmentLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAssessmentRepository(client *redis.Client, loader AssessmentLoader, ttl time.Duration) *AssessmentRepository {
	return &AssessmentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *AssessmentRepository) GetAssessment(ctx context.Context, assessmentID string) (domain.Assessment, error) {
	if a, ok := r.cached(ctx, assessmentID); ok {
		return a, nil
	}

	result, err, _ := r.sf.Do(assessmentID, func() (any, error) {
		// another caller may have filled the cache meanwhile
		if a, ok := r.cached(ctx, assessmentID); ok {
			return a, nil
		}

		a, err := r.loader.LoadAssessment(ctx, assessmentID)
		if err != nil {
			return domain.Assessment{}, err
		}
		if blob, err := json.Marshal(a); err == nil {
			_ = r.client.Set(ctx, r.key(assessmentID), blob, r.ttlWithJitter()).Err()
		}
		return a, nil
	})
	if err != nil {
		return domain.Assessment{}, err
	}
	return result.(domain.Assessment), nil
}

// Invalidate removes the cached copy of an assessment.
func (r *AssessmentRepository) Invalidate(ctx context.Context, assessmentID string) error {
	return r.client.Del(ctx, r.key(assessmentID)).Err()
}

// cached reports a miss for absent and undecodable entries alike.
func (r *AssessmentRepository) cached(ctx context.Context, id string) (domain.Assessment, bool) {
	blob, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return domain.Assessment{}, false
	}
	var a domain.Assessment
	if err := json.Unmarshal(blob, &a); err != nil {
		return domain.Assessment{}, false
	}
	return a, true
}

func (r *AssessmentRepository) key(id string) string {
	return "assessment:" + id
}

func (r *AssessmentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
