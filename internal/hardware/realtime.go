package hardware

import (
	"github.com/wfunc/vend-machine/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// 出货期间使用的实时优先级
const realtimePriority = 10

// PrioritySetter 设置当前进程的调度策略
type PrioritySetter func(policy int, priority int) error

// schedSetScheduler 默认实现，直接调内核接口
func schedSetScheduler(policy int, priority int) error {
	attr := &unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   uint32(policy),
		Priority: uint32(priority),
	}
	return unix.SchedSetAttr(0, attr, 0)
}

// RealtimeGuard 实时优先级守卫
//
// 获取时把进程调度策略提升为SCHED_FIFO，压住出货计时窗口内的
// 调度抖动；Release在事务的所有退出路径上恢复默认分时策略。
// 设置或恢复失败都是进程级故障：进程停在错误的调度类里会破坏
// 整机调度公平性，就地修复不了。
type RealtimeGuard struct {
	setPolicy PrioritySetter
	onFault   func(msg string, fields ...zap.Field)
}

// AcquireRealtime 提升调度优先级并返回守卫
func AcquireRealtime() *RealtimeGuard {
	return acquireRealtime(schedSetScheduler, logger.Fatal)
}

func acquireRealtime(setPolicy PrioritySetter, onFault func(string, ...zap.Field)) *RealtimeGuard {
	g := &RealtimeGuard{setPolicy: setPolicy, onFault: onFault}
	if err := setPolicy(unix.SCHED_FIFO, realtimePriority); err != nil {
		g.onFault("无法提升到实时调度优先级", zap.Error(err))
	}
	return g
}

// Release 恢复默认分时调度策略
func (g *RealtimeGuard) Release() {
	if err := g.setPolicy(unix.SCHED_NORMAL, 0); err != nil {
		g.onFault("无法恢复默认调度策略", zap.Error(err))
	}
}
