package solver

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

// Solve 按参数组装适应度计算器、个体工厂、初始种群和遗传算法并运行
func Solve(ctx context.Context, inst *cake.Instance, params Parameters, onProgress ProgressFunc, logger *slog.Logger) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	evaluator, err := NewEvaluator(inst)
	if err != nil {
		return nil, err
	}

	factory, err := NewFactory(inst, evaluator, params.Variant, params.CutBoundary)
	if err != nil {
		return nil, err
	}

	// 生成初始种群
	population, err := RandomPopulation(factory, params.PopulationSize, rng, PopulationOptions{
		EliteCount:    params.EliteCount,
		CrossoverRate: params.CrossoverRate,
	})
	if err != nil {
		return nil, err
	}

	ga, err := New(population, params.GenerationLimit, params.StagnationLimit, onProgress)
	if err != nil {
		return nil, err
	}
	ga.SetLogger(logger)

	logger.Info("开始求解",
		slog.Int("agents", inst.AgentCount()),
		slog.Int("atoms", inst.AtomCount()),
		slog.String("variant", params.Variant.String()),
		slog.Int64("seed", seed),
	)

	result, err := ga.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.Seed = seed

	logger.Info("求解结束",
		slog.String("status", result.Status.String()),
		slog.Int("generations", result.Generations),
		slog.Float64("fitness", result.Best.Fitness()),
	)

	return result, nil
}
