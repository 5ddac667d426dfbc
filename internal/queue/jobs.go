package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// PurgeStudentTask is scheduled each time a student record is deleted.
	PurgeStudentTask = "student:purge"
)

// PurgePayload tells the worker whose blobs to remove.
type PurgePayload struct {
	StudentID string `json:"student_id"`
	RollNo    string `json:"roll_no"`
}

// NewPurgeTask builds the task for payload.
func NewPurgeTask(payload PurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(PurgeStudentTask, data), nil
}

// ParsePurgePayload decodes a task payload.
func ParsePurgePayload(task *asynq.Task) (PurgePayload, error) {
	var payload PurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PurgePayload{}, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

// Client enqueues purge tasks on Redis.
type Client struct {
	client *asynq.Client
}

// NewClient wraps an asynq client.
func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

// EnqueuePurge schedules removal of a deleted student's blobs.
func (c *Client) EnqueuePurge(ctx context.Context, payload PurgePayload) error {
	task, err := NewPurgeTask(payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue purge task: %w", err)
	}
	return nil
}
