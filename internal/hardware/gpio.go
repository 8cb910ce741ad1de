package hardware

import (
	"time"

	"github.com/warthog618/go-gpiocdev"
	"github.com/wfunc/vend-machine/internal/errors"
)

// gpioLine 基于GPIO字符设备的IO线
type gpioLine struct {
	line *gpiocdev.Line
}

// RequestOutputLine 申请一条输出线（初始低电平）
func RequestOutputLine(chip string, offset int, consumer string) (Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(consumer),
	)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLineRequest, "申请输出线失败: %s:%d", chip, offset)
	}
	return &gpioLine{line: l}, nil
}

// RequestInputLine 申请一条输入线
func RequestInputLine(chip string, offset int, activeLow bool, consumer string) (Line, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithConsumer(consumer),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLineRequest, "申请输入线失败: %s:%d", chip, offset)
	}
	return &gpioLine{line: l}, nil
}

// SetValue 写线电平
func (l *gpioLine) SetValue(value int) error {
	if err := l.line.SetValue(value); err != nil {
		return errors.Wrapf(err, errors.ErrLineIO, "写GPIO线失败: offset %d", l.line.Offset())
	}
	return nil
}

// Value 读线电平
func (l *gpioLine) Value() (int, error) {
	value, err := l.line.Value()
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrLineIO, "读GPIO线失败: offset %d", l.line.Offset())
	}
	return value, nil
}

// Offset 线偏移
func (l *gpioLine) Offset() int {
	return l.line.Offset()
}

// gpioEdgeLine 订阅了双向边沿事件的输入线
//
// 内核事件经handler进入通道，WaitEdge按方向过滤消费。
type gpioEdgeLine struct {
	line   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

// RequestEdgeLine 申请一条带边沿检测的输入线
func RequestEdgeLine(chip string, offset int, consumer string) (EdgeLine, error) {
	el := &gpioEdgeLine{
		events: make(chan gpiocdev.LineEvent, 16),
	}

	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithConsumer(consumer),
		gpiocdev.WithEventHandler(el.handleEvent),
	)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLineRequest, "申请边沿检测线失败: %s:%d", chip, offset)
	}

	el.line = l
	return el, nil
}

// handleEvent 事件入队；积压时丢弃，等待方只关心下一个匹配边沿
func (l *gpioEdgeLine) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case l.events <- evt:
	default:
	}
}

// SetValue 输入线不可写
func (l *gpioEdgeLine) SetValue(value int) error {
	return errors.Newf(errors.ErrLineIO, "旋转传感器线不可写: offset %d", l.line.Offset())
}

// Value 读线电平
func (l *gpioEdgeLine) Value() (int, error) {
	value, err := l.line.Value()
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrLineIO, "读旋转传感器线失败: offset %d", l.line.Offset())
	}
	return value, nil
}

// Offset 线偏移
func (l *gpioEdgeLine) Offset() int {
	return l.line.Offset()
}

// WaitEdge 等待指定方向的边沿
func (l *gpioEdgeLine) WaitEdge(direction EdgeDirection, timeout time.Duration) error {
	// 丢弃上一次等待之后残留的事件
drain:
	for {
		select {
		case <-l.events:
		default:
			break drain
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case evt := <-l.events:
			if direction == EdgeRising && evt.Type == gpiocdev.LineEventRisingEdge {
				return nil
			}
			if direction == EdgeFalling && evt.Type == gpiocdev.LineEventFallingEdge {
				return nil
			}
		case <-timer.C:
			return errors.Newf(errors.ErrTimeout, "等待%s边沿超时 (%s): offset %d",
				direction, timeout, l.line.Offset())
		}
	}
}
