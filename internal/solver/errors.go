package solver

import (
	"errors"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

var (
	// ErrInvalidChromosome 染色体长度、切点范围或分配基因不合法
	ErrInvalidChromosome = errors.New("无效的染色体")
	// ErrIncompatibleParents 交叉的两个父本染色体长度不一致
	ErrIncompatibleParents = errors.New("父本不兼容")
	// ErrInvalidArgument 与 cake 包共用同一个哨兵错误
	ErrInvalidArgument = cake.ErrInvalidArgument
)
