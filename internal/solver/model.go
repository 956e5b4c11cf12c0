package solver

import (
	"fmt"
	"strings"
)

// Variant: 个体的变体，两种变体只在分配基因的变异方式上不同
type Variant int

const (
	// VariantSwap 以 1/L 的概率两两交换分配基因
	VariantSwap Variant = iota
	// VariantOptimized 用匈牙利算法为当前切点求出最优分配
	VariantOptimized
)

func (v Variant) String() string {
	switch v {
	case VariantSwap:
		return "swap"
	case VariantOptimized:
		return "optimized"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	if v != VariantSwap && v != VariantOptimized {
		return nil, fmt.Errorf("%w: 未知的变体 %d", ErrInvalidArgument, int(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "swap":
		*v = VariantSwap
	case "optimized":
		*v = VariantOptimized
	default:
		return fmt.Errorf("%w: 未知的变体 %q", ErrInvalidArgument, string(text))
	}
	return nil
}

// BoundaryPolicy: 切点变异越界时的处理方式
type BoundaryPolicy int

const (
	// BoundaryWrap 在 [0, atomCount] 上循环回绕
	BoundaryWrap BoundaryPolicy = iota
	// BoundaryClamp 截断到 [0, atomCount]
	BoundaryClamp
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryWrap:
		return "wrap"
	case BoundaryClamp:
		return "clamp"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
	}
}

func (p BoundaryPolicy) MarshalText() ([]byte, error) {
	if p != BoundaryWrap && p != BoundaryClamp {
		return nil, fmt.Errorf("%w: 未知的边界策略 %d", ErrInvalidArgument, int(p))
	}
	return []byte(p.String()), nil
}

func (p *BoundaryPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "wrap":
		*p = BoundaryWrap
	case "clamp":
		*p = BoundaryClamp
	default:
		return fmt.Errorf("%w: 未知的边界策略 %q", ErrInvalidArgument, string(text))
	}
	return nil
}

// 遗传算法参数
type Parameters struct {
	PopulationSize  int            `json:"populationSize"`  // 种群大小
	GenerationLimit int            `json:"generationLimit"` // 最大迭代次数，0 表示不限制
	StagnationLimit int            `json:"stagnationLimit"` // 连续多少代没有改进就停止，0 表示不检测
	CrossoverRate   float64        `json:"crossoverRate"`   // 交叉概率
	EliteCount      int            `json:"eliteCount"`      // 精英数量
	Variant         Variant        `json:"variant"`
	CutBoundary     BoundaryPolicy `json:"cutBoundary"`
	Seed            int64          `json:"seed"` // 0 表示使用当前时间
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:  100,
		GenerationLimit: 1000,
		StagnationLimit: 200,
		CrossoverRate:   0.9,
		EliteCount:      2,
		Variant:         VariantOptimized,
		CutBoundary:     BoundaryWrap,
	}
}

func (p Parameters) Validate() error {
	if p.PopulationSize <= 0 {
		return fmt.Errorf("%w: 种群大小必须为正数（得到 %d）", ErrInvalidArgument, p.PopulationSize)
	}
	if p.GenerationLimit < 0 {
		return fmt.Errorf("%w: 最大迭代次数不能为负数（得到 %d）", ErrInvalidArgument, p.GenerationLimit)
	}
	if p.StagnationLimit < 0 {
		return fmt.Errorf("%w: 停滞代数上限不能为负数（得到 %d）", ErrInvalidArgument, p.StagnationLimit)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("%w: 交叉概率必须在 [0, 1] 中（得到 %f）", ErrInvalidArgument, p.CrossoverRate)
	}
	// 全部个体都是精英时种群不会再繁殖
	if p.EliteCount < 0 || p.EliteCount >= p.PopulationSize {
		return fmt.Errorf("%w: 精英数量必须在 [0, %d) 中（得到 %d）", ErrInvalidArgument, p.PopulationSize, p.EliteCount)
	}
	if _, err := p.Variant.MarshalText(); err != nil {
		return err
	}
	if _, err := p.CutBoundary.MarshalText(); err != nil {
		return err
	}
	return nil
}

// Status: 遗传算法的终止状态
type Status int

const (
	StatusOptimal Status = iota
	StatusStagnant
	StatusLimit
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusStagnant:
		return "stagnant"
	case StatusLimit:
		return "limit"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Progress: 每一代结束时发出的进度
type Progress struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"bestFitness"`
	Cancelled   bool    `json:"cancelled"`
}

type ProgressFunc func(Progress)

type Result struct {
	Best        *Individual
	Generations int
	Status      Status
	Seed        int64
}
