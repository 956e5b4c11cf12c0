package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
)

const solveJobColumns = `
	id, instance_id, parameters, status, stop_reason, seed, generations, fitness,
	chromosome, allocation, notify_email, error, created_at, started_at, finished_at, version
`

func (r *Repository) CreateSolveJob(job *domain.SolveJob) error {
	parameters, err := json.Marshal(job.Parameters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO solve_jobs (id, instance_id, parameters, status, notify_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{job.ID, job.InstanceID, parameters, job.Status, job.NotifyEmail}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&job.CreatedAt, &job.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSolveJobByID(id uuid.UUID) (*domain.SolveJob, error) {
	query := `SELECT ` + solveJobColumns + ` FROM solve_jobs WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanSolveJob(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetSolveJobsByInstanceID(instanceID int64) ([]*domain.SolveJob, error) {
	query := `SELECT ` + solveJobColumns + ` FROM solve_jobs WHERE instance_id = $1 ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*domain.SolveJob{}
	for rows.Next() {
		job, err := scanSolveJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// MarkSolveJobRunning 只有排队中的任务才能开始，重复投递的消息会得到 sql.ErrNoRows
func (r *Repository) MarkSolveJobRunning(job *domain.SolveJob) error {
	query := `
		UPDATE solve_jobs
		SET status = $1, started_at = NOW(), version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING started_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var startedAt time.Time
	args := []any{domain.JobStatusRunning, job.ID, domain.JobStatusQueued, job.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&startedAt, &job.Version); err != nil {
		return err
	}

	job.Status = domain.JobStatusRunning
	job.StartedAt = &startedAt

	return nil
}

// FinishSolveJob 写入任务的最终状态（finished 或 failed）
func (r *Repository) FinishSolveJob(job *domain.SolveJob) error {
	chromosome, err := json.Marshal(job.Chromosome)
	if err != nil {
		return err
	}
	allocation, err := json.Marshal(job.Allocation)
	if err != nil {
		return err
	}

	query := `
		UPDATE solve_jobs
		SET
			status = $1,
			stop_reason = $2,
			seed = $3,
			generations = $4,
			fitness = $5,
			chromosome = $6,
			allocation = $7,
			error = $8,
			finished_at = NOW(),
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING finished_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var finishedAt time.Time
	args := []any{job.Status, job.StopReason, job.Seed, job.Generations, job.Fitness, chromosome, allocation, job.Error, job.ID, job.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&finishedAt, &job.Version); err != nil {
		return err
	}

	job.FinishedAt = &finishedAt

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSolveJob(row rowScanner) (*domain.SolveJob, error) {
	job := &domain.SolveJob{}

	var (
		parameters []byte
		chromosome []byte
		allocation []byte
		fitness    sql.NullFloat64
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)

	dst := []any{
		&job.ID,
		&job.InstanceID,
		&parameters,
		&job.Status,
		&job.StopReason,
		&job.Seed,
		&job.Generations,
		&fitness,
		&chromosome,
		&allocation,
		&job.NotifyEmail,
		&job.Error,
		&job.CreatedAt,
		&startedAt,
		&finishedAt,
		&job.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(parameters, &job.Parameters); err != nil {
		return nil, err
	}
	// 还没有结果的任务这两列为 NULL
	if len(chromosome) > 0 {
		if err := json.Unmarshal(chromosome, &job.Chromosome); err != nil {
			return nil, err
		}
	}
	if len(allocation) > 0 {
		if err := json.Unmarshal(allocation, &job.Allocation); err != nil {
			return nil, err
		}
	}

	if fitness.Valid {
		job.Fitness = &fitness.Float64
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}

	return job, nil
}
