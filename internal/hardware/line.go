package hardware

import (
	"time"
)

// EdgeDirection 边沿方向
type EdgeDirection int

const (
	EdgeRising  EdgeDirection = iota // 上升沿（旋转开始）
	EdgeFalling                      // 下降沿（旋转结束）
)

// String 边沿方向描述
func (d EdgeDirection) String() string {
	if d == EdgeRising {
		return "rising"
	}
	return "falling"
}

// Line 一条数字IO线
//
// 由一条货道或门锁控制器独占持有。申请为输出的线不会被当作
// 余货传感器去读，反之亦然。
type Line interface {
	// SetValue 写线电平（0/1）
	SetValue(value int) error
	// Value 读线电平
	Value() (int, error)
	// Offset 线在芯片上的偏移，用于对外显示标识
	Offset() int
}

// EdgeLine 支持边沿事件订阅的输入线
//
// 用于旋转传感器：按方向过滤线电平变化事件，超时有界。
type EdgeLine interface {
	Line
	// WaitEdge 阻塞等待指定方向的边沿，超时返回 ErrTimeout
	WaitEdge(direction EdgeDirection, timeout time.Duration) error
}
