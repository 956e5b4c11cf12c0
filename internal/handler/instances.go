package handler

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"
)

func (h *Handler) GetAllInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := h.repository.GetAllInstances()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有实例成功", instances)
}

func (h *Handler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string      `json:"name" validate:"required,max=100"`
		Description string      `json:"description" validate:"max=1000"`
		Matrix      [][]float64 `json:"matrix" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateMatrixSize(req.Matrix, h.config.Limits.MaxAtoms, h.config.Limits.MaxAgents); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.saveInstance(w, r, req.Name, req.Description, req.Matrix)
}

func (h *Handler) GenerateInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string  `json:"name" validate:"max=100"`
		Description     string  `json:"description" validate:"max=1000"`
		Atoms           int     `json:"atoms" validate:"required,gte=1"`
		Agents          int     `json:"agents" validate:"required,gte=1"`
		ZeroProbability float64 `json:"zeroProbability" validate:"gte=0,lt=1"`
		Seed            int64   `json:"seed"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Atoms > h.config.Limits.MaxAtoms {
		h.errorResponse(w, r, "原子数量过多")
		return
	}
	if req.Agents > h.config.Limits.MaxAgents {
		h.errorResponse(w, r, "参与者数量过多")
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	matrix, err := cake.GenerateMatrix(rand.New(rand.NewSource(seed)), req.Atoms, req.Agents, req.ZeroProbability)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name == "" {
		req.Name = utils.GenerateRandomInstanceName()
	}
	if req.Description == "" {
		req.Description = utils.GenerateRandomInstanceDescription(req.Atoms, req.Agents)
	}

	h.saveInstance(w, r, req.Name, req.Description, matrix)
}

func (h *Handler) saveInstance(w http.ResponseWriter, r *http.Request, name string, description string, matrix [][]float64) {
	inst, err := cake.NewInstance(matrix)
	if err != nil {
		if errors.Is(err, cake.ErrInvalidInstance) {
			h.badRequest(w, r, err)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	record := &domain.Instance{
		Name:        name,
		Description: description,
		AtomCount:   inst.AtomCount(),
		AgentCount:  inst.AgentCount(),
		Matrix:      inst.Matrix(),
		Fingerprint: utils.FingerprintMatrix(matrix),
	}

	if err := h.repository.CreateInstance(record); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "instances_name_key":
				h.errorResponse(w, r, "实例名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建实例成功", record)
}

func (h *Handler) GetInstance(w http.ResponseWriter, r *http.Request) {
	inst := r.Context().Value(InstanceCtx).(*domain.Instance)

	h.successResponse(w, r, "获取实例成功", inst)
}

func (h *Handler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	inst := r.Context().Value(InstanceCtx).(*domain.Instance)

	if err := h.repository.DeleteInstance(inst.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除实例成功", nil)
}

func (h *Handler) GetInstanceJobs(w http.ResponseWriter, r *http.Request) {
	inst := r.Context().Value(InstanceCtx).(*domain.Instance)

	jobs, err := h.repository.GetSolveJobsByInstanceID(inst.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取求解任务成功", jobs)
}
