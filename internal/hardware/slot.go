package hardware

import (
	"fmt"
	"strings"

	"github.com/wfunc/vend-machine/internal/errors"
	"github.com/wfunc/vend-machine/internal/logger"
	"go.uber.org/zap"
)

// SlotKind 货道变体
type SlotKind int

const (
	SlotOneWire SlotKind = iota // 一线总线货道
	SlotGPIO                    // GPIO三线货道
)

// Slot 一条货道
//
// 封闭的带标签变体：一线总线地址（出货、余货、确认全走文件路径），
// 或 出货/余货/旋转 GPIO三元组。进程启动后不可变，IO线由本货道独占，
// 对外以1-based编号标识。
type Slot struct {
	Kind SlotKind

	// 一线总线模式
	DeviceID string
	Bus      *OneWireBus

	// GPIO模式
	Vend    Line
	Stocked Line
	Cam     EdgeLine // 旋转传感器，nil表示没有
}

// Actuate 通断出货电机
func (s *Slot) Actuate(energize bool) error {
	if s.Kind == SlotOneWire {
		return s.Bus.WritePIO(s.DeviceID, energize)
	}

	value := 0
	if energize {
		value = 1
	}
	if err := s.Vend.SetValue(value); err != nil {
		return errors.Wrapf(err, errors.ErrLineIO, "写出货线失败: %s", s)
	}
	return nil
}

// IsStocked 读取余货状态（无副作用、不阻塞）
func (s *Slot) IsStocked() bool {
	if s.Kind == SlotOneWire {
		return s.Bus.DevicePresent(s.DeviceID)
	}

	value, err := s.Stocked.Value()
	if err != nil {
		logger.Error("读余货线失败", zap.Stringer("slot", s), zap.Error(err))
		return false
	}
	return value == 1
}

// String 对外显示标识：一线地址，或 "<出货偏移>.<余货偏移>[.<旋转偏移>]"
func (s *Slot) String() string {
	if s.Kind == SlotOneWire {
		return s.DeviceID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d", s.Vend.Offset(), s.Stocked.Offset())
	if s.Cam != nil {
		fmt.Fprintf(&b, ".%d", s.Cam.Offset())
	}
	return b.String()
}
