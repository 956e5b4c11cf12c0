package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"
)

type Repository interface {
	GetSolveJobByID(id uuid.UUID) (*domain.SolveJob, error)
	GetInstanceByID(id int64) (*domain.Instance, error)
	MarkSolveJobRunning(job *domain.SolveJob) error
	FinishSolveJob(job *domain.SolveJob) error
}

type StateStore interface {
	SaveProgress(ctx context.Context, jobID string, progress domain.JobProgress) error
	IsCancelled(ctx context.Context, jobID string) (bool, error)
	CacheResult(ctx context.Context, key string, jobID string) error
}

type Publisher interface {
	Publish(ctx context.Context, v any) error
}

type Options struct {
	CancelPollInterval time.Duration
	ProgressInterval   int // 每多少代写一次进度
}

type Worker struct {
	repo    Repository
	state   StateStore
	mail    Publisher
	options Options
	logger  *slog.Logger
}

func New(repo Repository, state StateStore, mail Publisher, options Options, logger *slog.Logger) *Worker {
	if options.CancelPollInterval <= 0 {
		options.CancelPollInterval = time.Second
	}
	if options.ProgressInterval <= 0 {
		options.ProgressInterval = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		repo:    repo,
		state:   state,
		mail:    mail,
		options: options,
		logger:  logger,
	}
}

// Process 执行一个求解任务。只有基础设施出错时才返回错误，求解本身的失败会记录在任务中
func (w *Worker) Process(ctx context.Context, msg domain.SolveJobMessage) error {
	logger := w.logger.With(slog.String("job_id", msg.JobID.String()))

	job, err := w.repo.GetSolveJobByID(msg.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("任务不存在，忽略该消息")
			return nil
		}
		return err
	}

	if job.Status != domain.JobStatusQueued {
		logger.Warn("任务不处于排队状态，忽略该消息", slog.String("status", string(job.Status)))
		return nil
	}

	// 排队期间已经被取消的任务不再执行
	cancelled, err := w.state.IsCancelled(ctx, job.ID.String())
	if err != nil {
		logger.Error("无法读取取消标记", slog.String("error", err.Error()))
	}
	if cancelled {
		return w.cancelQueued(ctx, job, logger)
	}

	if err := w.repo.MarkSolveJobRunning(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 其他 worker 已经开始执行这个任务
			logger.Warn("任务已被其他 worker 领取")
			return nil
		}
		return err
	}

	record, err := w.repo.GetInstanceByID(job.InstanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return w.fail(ctx, job, nil, errors.New("实例不存在"), logger)
		}
		return err
	}

	inst, err := cake.NewInstance(record.Matrix)
	if err != nil {
		return w.fail(ctx, job, record, err, logger)
	}

	result, err := w.run(ctx, job, inst, logger)
	if err != nil {
		return w.fail(ctx, job, record, err, logger)
	}

	fitness := result.Best.Fitness()
	job.Status = domain.JobStatusFinished
	job.StopReason = result.Status.String()
	job.Seed = result.Seed
	job.Generations = result.Generations
	job.Fitness = &fitness
	job.Chromosome = result.Best.Chromosome()
	job.Allocation = solver.Allocation(result.Best)

	if err := w.repo.FinishSolveJob(job); err != nil {
		return err
	}

	// 停机时 ctx 已经被取消，收尾的写入不能跟着失败
	ctx = context.WithoutCancel(ctx)

	// 固定种子的运行结果是可复现的，可以直接复用
	if job.Parameters.Seed != 0 && result.Status != solver.StatusCancelled {
		key, err := utils.SolveCacheKey(record.Fingerprint, job.Parameters)
		if err == nil {
			err = w.state.CacheResult(ctx, key, job.ID.String())
		}
		if err != nil {
			logger.Error("无法缓存求解结果", slog.String("error", err.Error()))
		}
	}

	w.notify(ctx, job, record, logger)

	return nil
}

func (w *Worker) run(ctx context.Context, job *domain.SolveJob, inst *cake.Instance, logger *slog.Logger) (*solver.Result, error) {
	jobID := job.ID.String()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 定期检查 redis 中的取消标记
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.watchCancel(runCtx, jobID, cancel, logger)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// 进度在运行被取消之后仍然要写入
	persistCtx := context.WithoutCancel(ctx)
	onProgress := func(p solver.Progress) {
		if p.Generation%w.options.ProgressInterval != 0 && !p.Cancelled {
			return
		}
		w.saveProgress(persistCtx, jobID, p, logger)
	}

	result, err := solver.Solve(runCtx, inst, job.Parameters, onProgress, logger)
	if err != nil {
		return nil, err
	}

	// 最后一代总是写入
	w.saveProgress(persistCtx, jobID, solver.Progress{
		Generation:  result.Generations,
		BestFitness: result.Best.Fitness(),
		Cancelled:   result.Status == solver.StatusCancelled,
	}, logger)

	return result, nil
}

func (w *Worker) watchCancel(ctx context.Context, jobID string, cancel context.CancelFunc, logger *slog.Logger) {
	ticker := time.NewTicker(w.options.CancelPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cancelled, err := w.state.IsCancelled(ctx, jobID)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("无法读取取消标记", slog.String("error", err.Error()))
				}
				continue
			}
			if cancelled {
				logger.Info("收到取消请求")
				cancel()
				return
			}
		}
	}
}

func (w *Worker) saveProgress(ctx context.Context, jobID string, p solver.Progress, logger *slog.Logger) {
	progress := domain.JobProgress{
		Generation:  p.Generation,
		BestFitness: p.BestFitness,
		Cancelled:   p.Cancelled,
		UpdatedAt:   time.Now(),
	}
	if err := w.state.SaveProgress(ctx, jobID, progress); err != nil {
		logger.Error("无法保存任务进度", slog.String("error", err.Error()))
	}
}

func (w *Worker) fail(ctx context.Context, job *domain.SolveJob, record *domain.Instance, cause error, logger *slog.Logger) error {
	logger.Error("求解失败", slog.String("error", cause.Error()))

	job.Status = domain.JobStatusFailed
	job.Error = cause.Error()
	if err := w.repo.FinishSolveJob(job); err != nil {
		return fmt.Errorf("无法保存失败的任务: %w", err)
	}

	w.notify(context.WithoutCancel(ctx), job, record, logger)

	return nil
}

// cancelQueued 直接结束一个还没开始执行就被取消的任务
func (w *Worker) cancelQueued(ctx context.Context, job *domain.SolveJob, logger *slog.Logger) error {
	logger.Info("任务在开始前已被取消")

	job.Status = domain.JobStatusFinished
	job.StopReason = solver.StatusCancelled.String()
	if err := w.repo.FinishSolveJob(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 其他 worker 已经处理了这个任务
			return nil
		}
		return fmt.Errorf("无法保存已取消的任务: %w", err)
	}

	// 实例只用于邮件里的名称
	record, err := w.repo.GetInstanceByID(job.InstanceID)
	if err != nil {
		logger.Warn("无法读取任务的实例", slog.String("error", err.Error()))
		record = nil
	}
	w.notify(context.WithoutCancel(ctx), job, record, logger)

	return nil
}

func (w *Worker) notify(ctx context.Context, job *domain.SolveJob, record *domain.Instance, logger *slog.Logger) {
	if job.NotifyEmail == "" {
		return
	}

	data := domain.SolveFinishedMailData{
		JobID:       job.ID.String(),
		Status:      string(job.Status),
		StopReason:  job.StopReason,
		Generations: job.Generations,
		Error:       job.Error,
	}
	if record != nil {
		data.InstanceName = record.Name
	}
	if job.Fitness != nil {
		data.Fitness = *job.Fitness
		data.EnvyFree = *job.Fitness == 0
	}

	msg := domain.MailMessage{
		Type: domain.MailTypeSolveFinished,
		To:   job.NotifyEmail,
		Data: data,
	}
	if err := w.mail.Publish(ctx, msg); err != nil {
		logger.Error("无法发送邮件消息", slog.String("error", err.Error()))
	}
}
