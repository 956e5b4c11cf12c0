package cake

import (
	"fmt"
	"sort"
)

// Atom: 不可再分的最小资源单元，Position 从 1 开始
type Atom struct {
	Position  int
	Valuation float64
}

// Agent: 参与者，只保存其估值为正的原子
type Agent struct {
	id         int
	atoms      []Atom
	valuations map[int]float64 // position -> valuation
	sealed     bool            // 实例构造完成后不能再修改
}

func newAgent(id int) *Agent {
	return &Agent{
		id:         id,
		atoms:      make([]Atom, 0),
		valuations: make(map[int]float64),
	}
}

func (a *Agent) ID() int {
	return a.id
}

// AddValuation 只在构造实例的时候使用，同一个位置不能重复添加
// 实例构造完成后调用会返回 ErrInvalidInstance
func (a *Agent) AddValuation(atom Atom) error {
	if a.sealed {
		return fmt.Errorf("%w: 参与者 %d 属于已构造完成的实例，不能再添加估值", ErrInvalidInstance, a.id)
	}
	if atom.Position <= 0 {
		return fmt.Errorf("%w: 参与者 %d 的原子位置 %d 必须为正数", ErrInvalidInstance, a.id, atom.Position)
	}
	if _, exists := a.valuations[atom.Position]; exists {
		return fmt.Errorf("%w: 参与者 %d 对位置 %d 的估值重复", ErrInvalidInstance, a.id, atom.Position)
	}

	a.valuations[atom.Position] = atom.Valuation

	// 保持 atoms 按位置有序
	i := sort.Search(len(a.atoms), func(i int) bool { return a.atoms[i].Position > atom.Position })
	a.atoms = append(a.atoms, Atom{})
	copy(a.atoms[i+1:], a.atoms[i:])
	a.atoms[i] = atom

	return nil
}

// Valuation 返回参与者对某个位置的估值，没有估值的位置为 0
func (a *Agent) Valuation(position int) float64 {
	return a.valuations[position]
}

// Atoms 返回按位置排序的原子副本
func (a *Agent) Atoms() []Atom {
	atoms := make([]Atom, len(a.atoms))
	copy(atoms, a.atoms)
	return atoms
}

// Total 返回参与者对整块蛋糕的估值
func (a *Agent) Total() float64 {
	total := 0.0
	for _, atom := range a.atoms {
		total += atom.Valuation
	}
	return total
}

