package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"
)

// validateParameters 在 solver 的检查之外限制单个任务的规模
func (h *Handler) validateParameters(params solver.Parameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if params.PopulationSize > h.config.Limits.MaxPopulationSize {
		return fmt.Errorf("种群大小不能超过 %d", h.config.Limits.MaxPopulationSize)
	}
	if params.GenerationLimit == 0 || params.GenerationLimit > h.config.Limits.MaxGenerationLimit {
		return fmt.Errorf("最大迭代次数必须在 [1, %d] 中", h.config.Limits.MaxGenerationLimit)
	}
	return nil
}

func (h *Handler) SolveInstance(w http.ResponseWriter, r *http.Request) {
	inst := r.Context().Value(InstanceCtx).(*domain.Instance)

	// 请求中没有给出的参数使用配置中的默认值
	req := struct {
		Parameters  solver.Parameters `json:"parameters"`
		NotifyEmail string            `json:"notifyEmail" validate:"omitempty,email"`
	}{
		Parameters: h.config.Solver.Parameters(),
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validateParameters(req.Parameters); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	// 固定种子的求解结果可以复用
	if req.Parameters.Seed != 0 {
		job, err := h.cachedSolveJob(ctx, inst, req.Parameters)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if job != nil {
			h.successResponse(w, r, "已复用相同参数的求解结果", job)
			return
		}
	}

	job := &domain.SolveJob{
		ID:          uuid.New(),
		InstanceID:  inst.ID,
		Parameters:  req.Parameters,
		Status:      domain.JobStatusQueued,
		NotifyEmail: req.NotifyEmail,
	}
	if err := h.repository.CreateSolveJob(job); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.solvePublisher.Publish(ctx, domain.SolveJobMessage{JobID: job.ID}); err != nil {
		// 任务无法投递，直接标记为失败，避免一直处于排队状态
		job.Status = domain.JobStatusFailed
		job.Error = "无法投递任务"
		if finishErr := h.repository.FinishSolveJob(job); finishErr != nil {
			slog.Error("无法标记任务失败", "job_id", job.ID, "error", finishErr)
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已提交求解任务", job)
}

// cachedSolveJob 返回缓存中仍然有效的已完成任务，没有时返回 nil
func (h *Handler) cachedSolveJob(ctx context.Context, inst *domain.Instance, params solver.Parameters) (*domain.SolveJob, error) {
	key, err := utils.SolveCacheKey(inst.Fingerprint, params)
	if err != nil {
		return nil, err
	}

	jobIDString, err := h.jobState.CachedResult(ctx, key)
	if err != nil || jobIDString == "" {
		return nil, err
	}

	jobID, err := uuid.Parse(jobIDString)
	if err != nil {
		return nil, h.jobState.Forget(ctx, key)
	}

	job, err := h.repository.GetSolveJobByID(jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, h.jobState.Forget(ctx, key)
		}
		return nil, err
	}
	if job.Status != domain.JobStatusFinished {
		return nil, nil
	}

	// 缓存的结果可能来自另一个相同矩阵的实例，需要确认染色体仍然有效
	model, err := cake.NewInstance(inst.Matrix)
	if err != nil {
		return nil, err
	}
	if _, err := utils.ValidateSolveResult(model, params.Variant, job.Chromosome); err != nil {
		slog.Warn("缓存的求解结果无效", "job_id", job.ID, "error", err)
		return nil, h.jobState.Forget(ctx, key)
	}

	return job, nil
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(SolveJobCtx).(*domain.SolveJob)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	progress, err := h.jobState.GetProgress(ctx, job.ID.String())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务成功", struct {
		*domain.SolveJob
		Progress *domain.JobProgress `json:"progress"`
	}{
		SolveJob: job,
		Progress: progress,
	})
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(SolveJobCtx).(*domain.SolveJob)

	if job.Status != domain.JobStatusQueued && job.Status != domain.JobStatusRunning {
		h.errorResponse(w, r, "任务已结束")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := h.jobState.RequestCancel(ctx, job.ID.String()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已请求取消任务", nil)
}
