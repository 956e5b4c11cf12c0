package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
)

func (r *Repository) CreateInstance(inst *domain.Instance) error {
	matrix, err := json.Marshal(inst.Matrix)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO instances (name, description, atom_count, agent_count, matrix, fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{inst.Name, inst.Description, inst.AtomCount, inst.AgentCount, matrix, inst.Fingerprint}
	dst := []any{&inst.ID, &inst.CreatedAt, &inst.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetInstanceByID(id int64) (*domain.Instance, error) {
	query := `
		SELECT name, description, atom_count, agent_count, matrix, fingerprint, created_at, version
		FROM instances WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	inst := &domain.Instance{
		ID: id,
	}

	var matrix []byte
	dst := []any{&inst.Name, &inst.Description, &inst.AtomCount, &inst.AgentCount, &matrix, &inst.Fingerprint, &inst.CreatedAt, &inst.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(matrix, &inst.Matrix); err != nil {
		return nil, err
	}

	return inst, nil
}

// GetAllInstances 只返回元数据，不包含估值矩阵
func (r *Repository) GetAllInstances() ([]*domain.Instance, error) {
	query := `
		SELECT id, name, description, atom_count, agent_count, fingerprint, created_at, version
		FROM instances ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := []*domain.Instance{}
	for rows.Next() {
		inst := &domain.Instance{}
		dst := []any{&inst.ID, &inst.Name, &inst.Description, &inst.AtomCount, &inst.AgentCount, &inst.Fingerprint, &inst.CreatedAt, &inst.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *Repository) DeleteInstance(id int64) error {
	query := `DELETE FROM instances WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
