package hardware

import (
	"time"

	"github.com/wfunc/vend-machine/internal/errors"
	"go.uber.org/zap"
)

// 旋转传感器确认超时
const (
	defaultSpinupTimeout = 500 * time.Millisecond // 等待电机开始旋转
	defaultRotateTimeout = 10 * time.Second       // 等待电机停止旋转
)

// MachineSource 整机配置读取入口
//
// 实现方内部持锁保护读取，锁不跨越整个出货事务。
type MachineSource interface {
	Machine() *Machine
}

// Dropper 出货时序控制器
//
// 驱动一次端到端的出货事务：校验→开门锁→提权→通电→确认→
// 断电→（一线总线补一次安全断电）。两种硬件后端共用同一套
// 时序，确认策略按货道变体分派。
type Dropper struct {
	source MachineSource
	logger *zap.Logger

	spinupTimeout time.Duration
	rotateTimeout time.Duration
	acquireGuard  func() *RealtimeGuard
}

// NewDropper 创建出货控制器
func NewDropper(source MachineSource, log *zap.Logger) *Dropper {
	return &Dropper{
		source:        source,
		logger:        log,
		spinupTimeout: defaultSpinupTimeout,
		rotateTimeout: defaultRotateTimeout,
		acquireGuard:  AcquireRealtime,
	}
}

// Drop 执行一次完整的出货事务
//
// 返回nil表示出货成功，否则为 ErrBadSlot/ErrMotorFailed/
// ErrMotorTimeout 之一。结果反映最后一个致命故障：断电失败的
// 危险性压过此前已出货成功；一线总线补发断电失败直接终止。
// 阶段日志只做诊断，不影响返回结果。
func (d *Dropper) Drop(slotIndex int) error {
	m := d.source.Machine()

	// 1-based编号，上界含货道总数；非法编号不碰任何硬件
	if slotIndex < 1 || slotIndex > len(m.Slots) {
		d.logger.Error("请求了无效的货道编号",
			zap.Int("slot", slotIndex),
			zap.Int("slot_count", len(m.Slots)),
		)
		return errors.Newf(errors.ErrBadSlot, "货道 %d 超出范围 [1, %d]", slotIndex, len(m.Slots))
	}

	slot := m.Slots[slotIndex-1]
	log := d.logger.With(zap.Int("slot", slotIndex), zap.Stringer("slot_id", slot))
	log.Info("开始出货")

	// 共享门锁：只提交开锁请求，不等待
	if m.Latch != nil {
		m.Latch.Open()
	}

	// 电机动作期间提升调度优先级，所有退出路径上恢复
	guard := d.acquireGuard()
	defer guard.Release()

	var result error

	if err := slot.Actuate(true); err != nil {
		// 通电失败是致命的，但后面的断电照常执行兜底
		log.Error("电机通电失败", zap.Error(err))
		result = errors.New(errors.ErrMotorFailed).WithCause(err)
	} else if slot.Cam != nil {
		result = d.confirmRotation(slot, log)
	} else {
		log.Info("无旋转传感器，固定等待出货完成", zap.Duration("delay", m.DropDelay))
		time.Sleep(m.DropDelay)
	}

	log.Info("关闭电机")
	if err := slot.Actuate(false); err != nil {
		log.Error("电机断电失败", zap.Error(err))
		result = errors.New(errors.ErrMotorFailed).WithCause(err)
	}

	if slot.Kind == SlotOneWire {
		// 一线总线没有边沿确认，再留一个窗口后补发断电确保安全
		log.Info("等待后补发断电", zap.Duration("delay", m.DropDelay))
		time.Sleep(m.DropDelay)

		if err := slot.Actuate(false); err != nil {
			log.Error("补发断电失败", zap.Error(err))
			return errors.New(errors.ErrMotorFailed).WithCause(err)
		}
	}

	if result != nil {
		log.Warn("出货事务结束", zap.Error(result))
	} else {
		log.Info("出货事务结束", zap.String("outcome", "success"))
	}
	return result
}

// confirmRotation 通过旋转传感器的边沿确认一次完整旋转
func (d *Dropper) confirmRotation(slot *Slot, log *zap.Logger) error {
	log.Info("等待电机开始旋转")
	if err := slot.Cam.WaitEdge(EdgeRising, d.spinupTimeout); err != nil {
		// 电机可能早已在转，起转超时不算失败
		log.Warn("未观察到起转边沿，电机可能已在旋转", zap.Error(err))
	}

	log.Info("等待电机停止旋转")
	if err := slot.Cam.WaitEdge(EdgeFalling, d.rotateTimeout); err != nil {
		log.Error("等待旋转结束超时", zap.Error(err))
		return errors.New(errors.ErrMotorTimeout).WithCause(err)
	}

	log.Info("电机已停止旋转")
	return nil
}
