package solver

import (
	"fmt"
	"math/rand"
	"sort"
)

// Generation 是遗传算法驱动所需的种群接口
type Generation interface {
	Best() *Individual
	NextGeneration() (Generation, error)
}

// 繁殖参数
type PopulationOptions struct {
	EliteCount    int     // 直接保留到下一代的精英数量
	CrossoverRate float64 // 交叉概率，不交叉时复制第一个父本
}

// Population: 一代中固定大小的个体集合
type Population struct {
	individuals []*Individual
	rng         *rand.Rand
	options     PopulationOptions
}

func NewPopulation(individuals []*Individual, rng *rand.Rand, options PopulationOptions) (*Population, error) {
	if len(individuals) == 0 {
		return nil, fmt.Errorf("%w: 种群不能为空", ErrInvalidArgument)
	}
	for i, ind := range individuals {
		if ind == nil {
			return nil, fmt.Errorf("%w: 第 %d 个个体为 nil", ErrInvalidArgument, i)
		}
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: 随机数生成器为 nil", ErrInvalidArgument)
	}
	if options.EliteCount < 0 || options.EliteCount >= len(individuals) {
		return nil, fmt.Errorf("%w: 精英数量必须在 [0, %d) 中（得到 %d）", ErrInvalidArgument, len(individuals), options.EliteCount)
	}
	if options.CrossoverRate < 0 || options.CrossoverRate > 1 {
		return nil, fmt.Errorf("%w: 交叉概率必须在 [0, 1] 中（得到 %f）", ErrInvalidArgument, options.CrossoverRate)
	}

	return &Population{
		individuals: individuals,
		rng:         rng,
		options:     options,
	}, nil
}

// RandomPopulation 生成初始种群
func RandomPopulation(factory *Factory, size int, rng *rand.Rand, options PopulationOptions) (*Population, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: 个体工厂为 nil", ErrInvalidArgument)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: 种群大小必须为正数（得到 %d）", ErrInvalidArgument, size)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: 随机数生成器为 nil", ErrInvalidArgument)
	}

	individuals := make([]*Individual, size)
	for i := range individuals {
		ind, err := factory.Random(rng)
		if err != nil {
			return nil, err
		}
		individuals[i] = ind
	}

	return NewPopulation(individuals, rng, options)
}

func (p *Population) Size() int {
	return len(p.individuals)
}

func (p *Population) Individuals() []*Individual {
	individuals := make([]*Individual, len(p.individuals))
	copy(individuals, p.individuals)
	return individuals
}

// Best 返回适应度最小的个体，相同时取第一个
func (p *Population) Best() *Individual {
	best := p.individuals[0]
	for _, ind := range p.individuals[1:] {
		if ind.Fitness() < best.Fitness() {
			best = ind
		}
	}
	return best
}

// NextGeneration 繁殖出同样大小的下一代，当前种群不会被修改
func (p *Population) NextGeneration() (Generation, error) {
	size := len(p.individuals)
	next := make([]*Individual, 0, size)

	// 保留精英，个体一旦进入种群就不会再被修改，所以可以直接共享
	ranked := p.Individuals()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness() < ranked[j].Fitness()
	})
	next = append(next, ranked[:p.options.EliteCount]...)

	weights, total := p.rouletteWeights()

	// 在剩余的位置中进行交叉和变异
	for len(next) < size {
		// 选择两个父本
		p1 := p.selectByRoulette(weights, total)
		p2 := p.selectByRoulette(weights, total)

		var c1, c2 *Individual
		if p.rng.Float64() < p.options.CrossoverRate {
			var err error
			if c1, err = p1.Crossover(p2, p.rng); err != nil {
				return nil, err
			}
			if c2, err = p2.Crossover(p1, p.rng); err != nil {
				return nil, err
			}
		} else {
			c1 = p1.Clone()
			c2 = p2.Clone()
		}

		c1.Mutate(p.rng)
		next = append(next, c1)

		if len(next) < size {
			c2.Mutate(p.rng)
			next = append(next, c2)
		}
	}

	return &Population{
		individuals: next,
		rng:         p.rng,
		options:     p.options,
	}, nil
}

// 适应度越小权重越大，0 对应权重 1
func (p *Population) rouletteWeights() ([]float64, float64) {
	weights := make([]float64, len(p.individuals))
	total := 0.0
	for i, ind := range p.individuals {
		weights[i] = 1 / (1 + ind.Fitness())
		total += weights[i]
	}
	return weights, total
}

// 使用轮盘赌来进行选择
func (p *Population) selectByRoulette(weights []float64, total float64) *Individual {
	pick := p.rng.Float64() * total
	partial := 0.0

	for i, w := range weights {
		partial += w
		if partial >= pick {
			return p.individuals[i]
		}
	}

	// 浮点误差时落到最后一个
	return p.individuals[len(p.individuals)-1]
}
