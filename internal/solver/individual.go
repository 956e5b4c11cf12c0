package solver

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

// Individual: 候选解
//
// 染色体长度为 (k-1) + k：
//   - 前 k-1 个基因是切点，取值在 [0, atomCount] 中，存储时不排序，允许重复
//   - 后 k 个基因是 1..k 的一个排列，第 i 块（切点排序后）分给 genes[(k-1)+i]
type Individual struct {
	variant   Variant
	boundary  BoundaryPolicy
	genes     []int
	instance  *cake.Instance
	evaluator *Evaluator

	fitness   float64
	evaluated bool
}

// NewIndividual 校验染色体并构造个体，校验失败时返回 ErrInvalidChromosome
func NewIndividual(variant Variant, genes []int, inst *cake.Instance, evaluator *Evaluator) (*Individual, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: 实例为 nil", ErrInvalidArgument)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: 适应度计算器为 nil", ErrInvalidArgument)
	}
	if evaluator.instance != inst {
		return nil, fmt.Errorf("%w: 适应度计算器属于另一个实例", ErrInvalidArgument)
	}
	if _, err := variant.MarshalText(); err != nil {
		return nil, err
	}

	if err := validateChromosome(genes, inst); err != nil {
		return nil, err
	}

	return &Individual{
		variant:   variant,
		boundary:  BoundaryWrap,
		genes:     slices.Clone(genes),
		instance:  inst,
		evaluator: evaluator,
	}, nil
}

func validateChromosome(genes []int, inst *cake.Instance) error {
	if len(genes) == 0 {
		return fmt.Errorf("%w: 染色体为空", ErrInvalidChromosome)
	}

	k := inst.AgentCount()
	expected := 2*k - 1
	if len(genes) != expected {
		return fmt.Errorf("%w: 染色体长度应为 %d，实际为 %d", ErrInvalidChromosome, expected, len(genes))
	}

	cuts := slices.Clone(genes[:k-1])
	sort.Ints(cuts)
	if len(cuts) > 0 {
		if cuts[0] < 0 {
			return fmt.Errorf("%w: 切点 %d 小于 0", ErrInvalidChromosome, cuts[0])
		}
		if cuts[len(cuts)-1] > inst.AtomCount() {
			return fmt.Errorf("%w: 切点 %d 大于原子数量 %d", ErrInvalidChromosome, cuts[len(cuts)-1], inst.AtomCount())
		}
	}

	// 收集越界和重复的分配基因
	seen := make(map[int]bool, k)
	offending := make(map[int]struct{})
	for _, agentID := range genes[k-1:] {
		if agentID < 1 || agentID > k || seen[agentID] {
			offending[agentID] = struct{}{}
		}
		seen[agentID] = true
	}

	if len(offending) > 0 {
		values := make([]int, 0, len(offending))
		for v := range offending {
			values = append(values, v)
		}
		sort.Ints(values)
		return fmt.Errorf("%w: 分配基因必须是 1..%d 的排列，非法的值为 %v", ErrInvalidChromosome, k, values)
	}

	return nil
}

func (ind *Individual) Variant() Variant {
	return ind.variant
}

func (ind *Individual) Instance() *cake.Instance {
	return ind.instance
}

// Chromosome 返回染色体副本
func (ind *Individual) Chromosome() []int {
	return slices.Clone(ind.genes)
}

func (ind *Individual) cutCount() int {
	return ind.instance.AgentCount() - 1
}

// Cuts 返回排序后的切点
func (ind *Individual) Cuts() []int {
	cuts := slices.Clone(ind.genes[:ind.cutCount()])
	sort.Ints(cuts)
	return cuts
}

// Assignment 返回每一块对应的参与者 id
func (ind *Individual) Assignment() []int {
	return slices.Clone(ind.genes[ind.cutCount():])
}

// Fitness 在染色体变化之前会缓存结果
func (ind *Individual) Fitness() float64 {
	if !ind.evaluated {
		ind.fitness = ind.evaluator.Fitness(ind)
		ind.evaluated = true
	}
	return ind.fitness
}

func (ind *Individual) Clone() *Individual {
	clone := *ind
	clone.genes = slices.Clone(ind.genes)
	return &clone
}

func (ind *Individual) String() string {
	cuts := make([]string, 0, ind.cutCount())
	for _, c := range ind.Cuts() {
		cuts = append(cuts, fmt.Sprint(c))
	}
	assignment := make([]string, 0, ind.instance.AgentCount())
	for _, a := range ind.Assignment() {
		assignment = append(assignment, fmt.Sprint(a))
	}
	return fmt.Sprintf("[%s | %s] fitness=%.6f", strings.Join(cuts, " "), strings.Join(assignment, " "), ind.Fitness())
}
