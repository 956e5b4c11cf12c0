package cake

import "errors"

var (
	// ErrInvalidInstance 估值矩阵为空、不规则，或者存在没有任何正估值的参与者
	ErrInvalidInstance = errors.New("无效的问题实例")
	// ErrInvalidArgument 参数不合法（非正的数量、nil 引用等）
	ErrInvalidArgument = errors.New("无效的参数")
)
