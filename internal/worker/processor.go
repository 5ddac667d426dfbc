package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	"github.com/dharsanguruparan/HostelDesk/internal/queue"
)

// Purger removes every blob stored for a roll number.
type Purger interface {
	PurgeStudent(ctx context.Context, rollNo string) (int, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	blobs   Purger
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(blobs Purger, m *metrics.Metrics, log zerolog.Logger) *Processor {
	return &Processor{blobs: blobs, metrics: m, log: log}
}

// Handler registers the purge handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.PurgeStudentTask, p.HandlePurge)
	return mux
}

// HandlePurge removes the blobs of a deleted student.
func (p *Processor) HandlePurge(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParsePurgePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return p.Purge(ctx, payload)
}

// Purge runs one purge. It is also called inline when blobs live in the API
// process.
func (p *Processor) Purge(ctx context.Context, payload queue.PurgePayload) error {
	if payload.RollNo == "" {
		return fmt.Errorf("purge %s: empty roll number: %w", payload.StudentID, asynq.SkipRetry)
	}
	removed, err := p.blobs.PurgeStudent(ctx, payload.RollNo)
	p.metrics.Purge(err)
	if err != nil {
		p.log.Error().Err(err).Str("student", payload.StudentID).Msg("purge failed")
		return fmt.Errorf("purge %s: %w", payload.RollNo, err)
	}
	p.log.Info().Str("student", payload.StudentID).Str("roll_no", payload.RollNo).Int("removed", removed).Msg("student blobs purged")
	return nil
}
