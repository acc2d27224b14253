package task

import (
	"context"
	"time"

	"ffclip/media"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one scheduled operation. Values handed out by the Manager are
// snapshots; the live record is owned by the Manager.
type Task struct {
	ID          string          `json:"id"`
	Kind        media.Kind      `json:"kind"`
	Options     media.Operation `json:"options"`
	Status      Status          `json:"status"`
	Result      *media.Result   `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   time.Time       `json:"startedAt,omitempty"`
	CompletedAt time.Time       `json:"completedAt,omitempty"`

	cancel   context.CancelFunc
	done     chan struct{}
	canceled bool
}

func (t *Task) snapshot() Task {
	cp := *t
	cp.cancel = nil
	cp.done = nil
	return cp
}

// Stats counts registered tasks per status.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
