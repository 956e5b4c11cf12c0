package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// GeneticAlgorithm 驱动种群迭代，直到找到无嫉妒分配、停滞、达到代数上限或被取消
type GeneticAlgorithm struct {
	population      Generation
	generationLimit int
	stagnationLimit int
	onProgress      ProgressFunc
	logger          *slog.Logger
}

// New generationLimit 为 0 表示不限制代数，stagnationLimit 为 0 表示不检测停滞
func New(population Generation, generationLimit int, stagnationLimit int, onProgress ProgressFunc) (*GeneticAlgorithm, error) {
	if population == nil {
		return nil, fmt.Errorf("%w: 初始种群为 nil", ErrInvalidArgument)
	}
	if generationLimit < 0 {
		return nil, fmt.Errorf("%w: 最大迭代次数不能为负数（得到 %d）", ErrInvalidArgument, generationLimit)
	}
	if stagnationLimit < 0 {
		return nil, fmt.Errorf("%w: 停滞代数上限不能为负数（得到 %d）", ErrInvalidArgument, stagnationLimit)
	}

	return &GeneticAlgorithm{
		population:      population,
		generationLimit: generationLimit,
		stagnationLimit: stagnationLimit,
		onProgress:      onProgress,
		logger:          slog.Default(),
	}, nil
}

func (ga *GeneticAlgorithm) SetLogger(logger *slog.Logger) {
	if logger != nil {
		ga.logger = logger
	}
}

// Run 在每一代开始时检查一次 ctx，取消不是错误，仍然返回当前最优个体
func (ga *GeneticAlgorithm) Run(ctx context.Context) (*Result, error) {
	bestSeen := math.Inf(1)
	lastImprovement := 0
	generation := 0

	for ga.generationLimit == 0 || generation < ga.generationLimit {
		if ctx.Err() != nil {
			ga.logger.Debug("遗传算法被取消", "generation", generation)
			return ga.result(generation, StatusCancelled), nil
		}

		// 找到本代最佳样本
		best := ga.population.Best()
		if best.Fitness() == 0 {
			return &Result{Best: best, Generations: generation, Status: StatusOptimal}, nil
		}

		if ga.stagnationLimit > 0 && generation-lastImprovement >= ga.stagnationLimit {
			return &Result{Best: best, Generations: generation, Status: StatusStagnant}, nil
		}

		if best.Fitness() < bestSeen {
			bestSeen = best.Fitness()
			lastImprovement = generation
			ga.logger.Debug("适应度提升", "generation", generation, "fitness", bestSeen)
		}

		// 繁殖
		next, err := ga.population.NextGeneration()
		if err != nil {
			return nil, fmt.Errorf("第 %d 代繁殖失败: %w", generation, err)
		}
		ga.population = next
		generation++

		if ga.onProgress != nil {
			ga.onProgress(Progress{
				Generation:  generation,
				BestFitness: ga.population.Best().Fitness(),
				Cancelled:   ctx.Err() != nil,
			})
		}
	}

	status := StatusLimit
	if ga.population.Best().Fitness() == 0 {
		status = StatusOptimal
	}
	return ga.result(generation, status), nil
}

func (ga *GeneticAlgorithm) result(generation int, status Status) *Result {
	return &Result{
		Best:        ga.population.Best(),
		Generations: generation,
		Status:      status,
	}
}
