package solver

import (
	"fmt"
	"math/rand"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

// Factory 为给定实例和变体生成随机个体
type Factory struct {
	instance  *cake.Instance
	evaluator *Evaluator
	variant   Variant
	boundary  BoundaryPolicy
}

func NewFactory(inst *cake.Instance, evaluator *Evaluator, variant Variant, boundary BoundaryPolicy) (*Factory, error) {
	if inst == nil || evaluator == nil {
		return nil, fmt.Errorf("%w: 实例和适应度计算器不能为 nil", ErrInvalidArgument)
	}
	if _, err := variant.MarshalText(); err != nil {
		return nil, err
	}
	if _, err := boundary.MarshalText(); err != nil {
		return nil, err
	}

	return &Factory{
		instance:  inst,
		evaluator: evaluator,
		variant:   variant,
		boundary:  boundary,
	}, nil
}

// Random 随机初始化一个个体：切点在 [0, atomCount] 中均匀选取，分配为随机排列
func (f *Factory) Random(rng *rand.Rand) (*Individual, error) {
	k := f.instance.AgentCount()
	genes := make([]int, 0, 2*k-1)

	for i := 0; i < k-1; i++ {
		genes = append(genes, rng.Intn(f.instance.AtomCount()+1))
	}
	for _, agent := range rng.Perm(k) {
		genes = append(genes, agent+1)
	}

	ind, err := NewIndividual(f.variant, genes, f.instance, f.evaluator)
	if err != nil {
		return nil, err
	}
	ind.boundary = f.boundary

	return ind, nil
}
