package hardware

import (
	"sync"
	"time"

	"github.com/wfunc/vend-machine/internal/errors"
)

// MockWrite 一次写入尝试的记录
type MockWrite struct {
	Value int
	At    time.Time
}

// MockLine 模拟IO线（调试模式与测试用）
type MockLine struct {
	mu       sync.Mutex
	offset   int
	value    int
	writeErr error
	writes   []MockWrite
}

// NewMockLine 创建模拟IO线
func NewMockLine(offset int) *MockLine {
	return &MockLine{offset: offset}
}

// SetValue 写线电平
func (l *MockLine) SetValue(value int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writes = append(l.writes, MockWrite{Value: value, At: time.Now()})
	if l.writeErr != nil {
		return errors.Wrapf(l.writeErr, errors.ErrLineIO, "写模拟线失败: offset %d", l.offset)
	}
	l.value = value
	return nil
}

// Value 读线电平
func (l *MockLine) Value() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, nil
}

// Offset 线偏移
func (l *MockLine) Offset() int {
	return l.offset
}

// SetReadValue 预置读取电平
func (l *MockLine) SetReadValue(value int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = value
}

// FailWrites 令后续写入全部失败
func (l *MockLine) FailWrites(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeErr = err
}

// Writes 全部写入尝试（含失败的）
func (l *MockLine) Writes() []MockWrite {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MockWrite, len(l.writes))
	copy(out, l.writes)
	return out
}

// WriteValues 写入尝试的电平序列
func (l *MockLine) WriteValues() []int {
	writes := l.Writes()
	values := make([]int, len(writes))
	for i, w := range writes {
		values[i] = w.Value
	}
	return values
}

// MockEdgeLine 模拟带边沿事件的输入线
type MockEdgeLine struct {
	*MockLine
	events   chan EdgeDirection
	autoFire bool
}

// NewMockEdgeLine 创建模拟边沿检测线
func NewMockEdgeLine(offset int) *MockEdgeLine {
	return &MockEdgeLine{
		MockLine: NewMockLine(offset),
		events:   make(chan EdgeDirection, 16),
	}
}

// EnableAutoFire 自动确认每次边沿等待（调试模式：假装电机立即转完）
func (l *MockEdgeLine) EnableAutoFire() {
	l.autoFire = true
}

// FireEdge 注入一个边沿事件
func (l *MockEdgeLine) FireEdge(direction EdgeDirection) {
	select {
	case l.events <- direction:
	default:
	}
}

// WaitEdge 等待指定方向的边沿
func (l *MockEdgeLine) WaitEdge(direction EdgeDirection, timeout time.Duration) error {
	if l.autoFire {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case d := <-l.events:
			if d == direction {
				return nil
			}
		case <-timer.C:
			return errors.Newf(errors.ErrTimeout, "等待%s边沿超时 (%s): offset %d",
				direction, timeout, l.offset)
		}
	}
}
