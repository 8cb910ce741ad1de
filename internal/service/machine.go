package service

import (
	"fmt"
	"sync"

	"github.com/wfunc/vend-machine/internal/hardware"
	"go.uber.org/zap"
)

// SlotStatus 一条货道的对外状态
type SlotStatus struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Stocked bool   `json:"stocked"`
}

// MachineService 售货机业务服务
//
// 持有整机硬件配置的唯一入口。配置读取由互斥锁保护，锁只在
// 读取期间持有，不跨越整个出货事务；各货道的IO线相互独占，
// 独立货道并发动作是安全的。
type MachineService struct {
	mu      sync.Mutex
	machine *hardware.Machine
	dropper *hardware.Dropper
	logger  *zap.Logger
}

// NewMachineService 创建售货机服务
func NewMachineService(m *hardware.Machine, log *zap.Logger) *MachineService {
	s := &MachineService{
		machine: m,
		logger:  log,
	}
	s.dropper = hardware.NewDropper(s, log)
	return s
}

// Machine 整机配置读取（实现 hardware.MachineSource）
func (s *MachineService) Machine() *hardware.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine
}

// Drop 对指定货道执行一次出货事务
func (s *MachineService) Drop(slotIndex int) error {
	return s.dropper.Drop(slotIndex)
}

// Slots 全部货道的状态（编号0-based，与旧客户端约定一致）
func (s *MachineService) Slots() []SlotStatus {
	m := s.Machine()

	statuses := make([]SlotStatus, 0, len(m.Slots))
	for i, slot := range m.Slots {
		statuses = append(statuses, SlotStatus{
			ID:      slot.String(),
			Number:  i,
			Stocked: slot.IsStocked(),
		})
	}
	return statuses
}

// SlotReportStrings 旧版健康检查用的货道描述字符串
//
// 字符串格式是历史遗留的客户端约定，保持原样。
func (s *MachineService) SlotReportStrings() []string {
	m := s.Machine()

	reports := make([]string, 0, len(m.Slots))
	for i, slot := range m.Slots {
		state := "empty"
		if slot.IsStocked() {
			state = "stocked"
		}
		reports = append(reports, fmt.Sprintf("Slot %d (%s) is %s", i+1, slot, state))
	}
	return reports
}

// Temperature 机内温度（摄氏度）
func (s *MachineService) Temperature() float64 {
	return s.Machine().Temperature()
}
