package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TopicCampaignSends carries one SendJob per campaign to deliver.
const TopicCampaignSends = "campaign_sends"

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// SendJob is the payload of TopicCampaignSends.
type SendJob struct {
	CampaignID string `json:"campaign_id"`
}

// DecodeJob accepts the in-process payload or the JSON body delivered by a broker.
func DecodeJob(payload any) (SendJob, error) {
	var job SendJob
	switch v := payload.(type) {
	case SendJob:
		job = v
	case *SendJob:
		if v != nil {
			job = *v
		}
	case []byte:
		if err := json.Unmarshal(v, &job); err != nil {
			return job, fmt.Errorf("decode send job: %w", err)
		}
	case string:
		if err := json.Unmarshal([]byte(v), &job); err != nil {
			return job, fmt.Errorf("decode send job: %w", err)
		}
	default:
		return job, fmt.Errorf("unexpected payload type %T", payload)
	}
	if job.CampaignID == "" {
		return job, fmt.Errorf("send job without campaign_id")
	}
	return job, nil
}

// InMemoryQueue delivers to in-process handlers and retries failed jobs with
// a linear backoff.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	wg         sync.WaitGroup
	MaxRetries int
	Backoff    time.Duration
	Log        zerolog.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log zerolog.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		Log:        log,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Payload: payload, MaxRetries: q.MaxRetries}
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.processJob(topic, handler, job)
		}()
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			q.Log.Debug().Str("topic", topic).Msg("Job processed")
			return
		}

		job.RetryCount++
		q.Log.Warn().Err(err).Str("topic", topic).Int("attempt", job.RetryCount).
			Int("max_retries", job.MaxRetries).Msg("⚠️ Job failed")

		if job.RetryCount > job.MaxRetries {
			q.Log.Error().Str("topic", topic).Int("attempts", job.RetryCount).Msg("❌ Job permanently failed")
			return
		}

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published job has finished, retries included.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

var _ Queue = (*InMemoryQueue)(nil)
