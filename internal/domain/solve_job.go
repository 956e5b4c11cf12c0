package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusFinished JobStatus = "finished"
	JobStatusFailed   JobStatus = "failed"
)

// SolveJob: 一次异步求解任务
type SolveJob struct {
	ID          uuid.UUID         `json:"id"`
	InstanceID  int64             `json:"instanceID"`
	Parameters  solver.Parameters `json:"parameters"`
	Status      JobStatus         `json:"status"`
	StopReason  string            `json:"stopReason"` // optimal、stagnant、limit、cancelled
	Seed        int64             `json:"seed"`
	Generations int               `json:"generations"`
	Fitness     *float64          `json:"fitness"`
	Chromosome  []int             `json:"chromosome"`
	Allocation  []solver.Piece    `json:"allocation"`
	NotifyEmail string            `json:"notifyEmail"`
	Error       string            `json:"error"`
	CreatedAt   time.Time         `json:"createdAt"`
	StartedAt   *time.Time        `json:"startedAt"`
	FinishedAt  *time.Time        `json:"finishedAt"`
	Version     int32             `json:"-"`
}

// SolveJobMessage: 投递到求解队列中的消息
type SolveJobMessage struct {
	JobID uuid.UUID `json:"jobID"`
}

// JobProgress: 缓存在 redis 中的任务进度
type JobProgress struct {
	Generation  int       `json:"generation"`
	BestFitness float64   `json:"bestFitness"`
	Cancelled   bool      `json:"cancelled"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
